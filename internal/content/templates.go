package content

import (
	"strings"
	"text/template"
)

const systemPrompt = "You are a copywriter for short-term rental hosts. Write ready-to-publish text without preamble."

type kind struct {
	prompt    *template.Template
	simulated *template.Template
}

var funcs = template.FuncMap{
	"join":  strings.Join,
	"lower": strings.ToLower,
	"hashtag": hashtag,
}

func hashtag(s string) string {
	var sb strings.Builder
	sb.WriteByte('#')
	for _, w := range strings.Fields(s) {
		sb.WriteString(strings.ToUpper(w[:1]))
		sb.WriteString(strings.ToLower(w[1:]))
	}
	return sb.String()
}

func mustKind(name, prompt, simulated string) kind {
	return kind{
		prompt:    template.Must(template.New(name + "_prompt").Funcs(funcs).Parse(propertyBlock + prompt)),
		simulated: template.Must(template.New(name + "_simulated").Funcs(funcs).Parse(simulated)),
	}
}

const propertyBlock = `[PROPERTY]
Name: {{.Property.Name}}
City: {{.Property.City}}
Address: {{.Property.Address}}
Bedrooms: {{.Property.Bedrooms}}, bathrooms: {{.Property.Bathrooms}}, up to {{.Property.MaxGuests}} guests
{{- if .Property.Amenities}}
Amenities: {{join .Property.Amenities ", "}}
{{- end}}
{{- if .Property.Description}}
Notes from the host: {{.Property.Description}}
{{- end}}

`

var kinds = map[string]kind{
	ListingDescription: mustKind(ListingDescription, `[TASK]
Write a listing description of about 150 words in {{.Language}} with a {{.Tone}} tone.
Open with a one-line headline, then describe the space, the neighbourhood and who it suits.
{{- if .Extra}}
Also consider: {{.Extra}}
{{- end}}
`, `{{.Property.Name}}: your home in {{.Property.City}}

Welcome to {{.Property.Name}}, a {{.Property.Bedrooms}}-bedroom stay in {{.Property.City}} that sleeps up to {{.Property.MaxGuests}} guests.
{{- if .Property.Amenities}} Guests enjoy {{join .Property.Amenities ", "}}.{{end}}
Ideal for families and friends looking for comfort and a great location at {{.Property.Address}}.
`),

	WelcomeMessage: mustKind(WelcomeMessage, `[TASK]
Write a short welcome message in {{.Language}} with a {{.Tone}} tone for guests arriving at the property.
Include check-in reminders and an offer to help.
{{- if .Extra}}
Also consider: {{.Extra}}
{{- end}}
`, `Dear guest,

welcome to {{.Property.Name}}! We are delighted to host you in {{.Property.City}}.
The address is {{.Property.Address}}.
{{- if .Property.Amenities}} During your stay you can use {{join .Property.Amenities ", "}}.{{end}}
If you need anything at all, just send us a message.

Enjoy your stay!
`),

	SocialPost: mustKind(SocialPost, `[TASK]
Write a social media post in {{.Language}} with a {{.Tone}} tone promoting the property. Keep it under 60 words and end with three hashtags.
{{- if .Extra}}
Also consider: {{.Extra}}
{{- end}}
`, `Dreaming of {{.Property.City}}? {{.Property.Name}} is waiting for you: {{.Property.Bedrooms}} bedrooms, room for {{.Property.MaxGuests}}
{{- if .Property.Amenities}} and {{index .Property.Amenities 0 | lower}}{{end}}. Book your next escape today!
{{hashtag .Property.City}} #Travel #CiaoHost
`),

	HouseRules: mustKind(HouseRules, `[TASK]
Write clear house rules in {{.Language}} with a {{.Tone}} tone as a bulleted list: check-in and check-out, quiet hours, smoking, pets, parties, maximum occupancy.
{{- if .Extra}}
Also consider: {{.Extra}}
{{- end}}
`, `House rules for {{.Property.Name}}
- Check-in from 15:00, check-out by 10:00.
- Maximum {{.Property.MaxGuests}} guests.
- Quiet hours from 22:00 to 08:00.
- No smoking inside the property.
- No parties or events.
- Please treat the home as your own and report any damage.
`),
}
