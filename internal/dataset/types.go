package dataset

// ColumnTypes buckets every column of a table into exactly one semantic class.
// Buckets keep the table's column order.
type ColumnTypes struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
	Datetime    []string `json:"datetime"`
	Text        []string `json:"text"`
}

// Class names returned by ClassOf.
const (
	ClassNumeric     = "numeric"
	ClassCategorical = "categorical"
	ClassDatetime    = "datetime"
	ClassText        = "text"
)

// minCategoricalDistinct is the floor of the categorical threshold.
const minCategoricalDistinct = 10

// Classify partitions the columns of t. A string column is categorical when
// its distinct non-empty values are fewer than max(10, 5% of rows).
func Classify(t *Table) ColumnTypes {
	out := ColumnTypes{
		Numeric:     []string{},
		Categorical: []string{},
		Datetime:    []string{},
		Text:        []string{},
	}
	if t == nil {
		return out
	}
	for _, c := range t.Columns {
		switch ClassOf(c, t.NumRows()) {
		case ClassNumeric:
			out.Numeric = append(out.Numeric, c.Name)
		case ClassDatetime:
			out.Datetime = append(out.Datetime, c.Name)
		case ClassCategorical:
			out.Categorical = append(out.Categorical, c.Name)
		default:
			out.Text = append(out.Text, c.Name)
		}
	}
	return out
}

// ClassOf returns the semantic class of one column given the table's row count.
func ClassOf(c *Column, rows int) string {
	switch c.Kind {
	case KindNumeric:
		return ClassNumeric
	case KindDatetime:
		return ClassDatetime
	case KindBool:
		return ClassCategorical
	}
	threshold := float64(rows) * 0.05
	if threshold < minCategoricalDistinct {
		threshold = minCategoricalDistinct
	}
	if float64(c.Distinct()) < threshold {
		return ClassCategorical
	}
	return ClassText
}

// Of returns the class of the named column and whether it exists.
func (ct ColumnTypes) Of(name string) (string, bool) {
	for class, names := range map[string][]string{
		ClassNumeric:     ct.Numeric,
		ClassCategorical: ct.Categorical,
		ClassDatetime:    ct.Datetime,
		ClassText:        ct.Text,
	} {
		for _, n := range names {
			if n == name {
				return class, true
			}
		}
	}
	return "", false
}
