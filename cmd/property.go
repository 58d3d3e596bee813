package cmd

import (
	"fmt"
	"strings"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/spf13/cobra"
)

var (
	propName        string
	propAddress     string
	propCity        string
	propDescription string
	propBedrooms    int
	propBathrooms   float64
	propMaxGuests   int
	propBasePrice   float64
	propPrice       float64
	propAmenities   []string
	propPhotos      []string
	propStatus      string
	propListCity    string
	propListStatus  string
)

var propertyCmd = &cobra.Command{
	Use:     "property",
	Aliases: []string{"properties"},
	Short:   "Manage rental properties",
}

var propertyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a property",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := st.Properties.Create(store.Property{
			Name:         propName,
			Address:      propAddress,
			City:         propCity,
			Description:  propDescription,
			Bedrooms:     propBedrooms,
			Bathrooms:    propBathrooms,
			MaxGuests:    propMaxGuests,
			BasePrice:    propBasePrice,
			CurrentPrice: propPrice,
			Amenities:    propAmenities,
			Photos:       propPhotos,
			Status:       propStatus,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Property added: %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var propertyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List properties",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		props, err := st.Properties.List()
		if err != nil {
			return err
		}
		shown := 0
		for _, p := range props {
			if propListCity != "" && !strings.EqualFold(p.City, propListCity) {
				continue
			}
			if propListStatus != "" && !strings.EqualFold(p.Status, propListStatus) {
				continue
			}
			fmt.Printf("- %s: %s, %s (%d bd, %d guests) %.2f %s [%s]\n",
				p.ID, p.Name, p.City, p.Bedrooms, p.MaxGuests, p.CurrentPrice, currency(), p.Status)
			shown++
		}
		if shown == 0 {
			fmt.Println("(no properties)")
		}
		return nil
	},
}

var propertyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one property",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := st.Properties.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", p.Name, p.ID)
		fmt.Printf("  address:   %s, %s\n", p.Address, p.City)
		fmt.Printf("  rooms:     %d bedrooms, %g bathrooms, up to %d guests\n", p.Bedrooms, p.Bathrooms, p.MaxGuests)
		fmt.Printf("  price:     base %.2f, current %.2f %s\n", p.BasePrice, p.CurrentPrice, currency())
		fmt.Printf("  status:    %s\n", p.Status)
		if len(p.Amenities) > 0 {
			fmt.Printf("  amenities: %s\n", strings.Join(p.Amenities, ", "))
		}
		if p.Description != "" {
			fmt.Printf("  %s\n", p.Description)
		}
		return nil
	},
}

var propertyUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update the given fields of a property",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := st.Properties.Get(args[0])
		if err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("name") {
			p.Name = propName
		}
		if f.Changed("address") {
			p.Address = propAddress
		}
		if f.Changed("city") {
			p.City = propCity
		}
		if f.Changed("description") {
			p.Description = propDescription
		}
		if f.Changed("bedrooms") {
			p.Bedrooms = propBedrooms
		}
		if f.Changed("bathrooms") {
			p.Bathrooms = propBathrooms
		}
		if f.Changed("max-guests") {
			p.MaxGuests = propMaxGuests
		}
		if f.Changed("base-price") {
			p.BasePrice = propBasePrice
		}
		if f.Changed("price") {
			p.CurrentPrice = propPrice
		}
		if f.Changed("amenity") {
			p.Amenities = propAmenities
		}
		if f.Changed("photo") {
			p.Photos = propPhotos
		}
		if f.Changed("status") {
			p.Status = propStatus
		}
		if _, err := st.Properties.Update(p); err != nil {
			return err
		}
		fmt.Printf("✓ Property updated: %s\n", p.ID)
		return nil
	},
}

var propertyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a property with its bookings and price calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		if err := st.Properties.Delete(args[0]); err != nil {
			return err
		}
		n, err := st.Bookings.DeleteForProperty(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Property deleted: %s (%d bookings removed)\n", args[0], n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(propertyCmd)
	propertyCmd.AddCommand(propertyAddCmd, propertyListCmd, propertyShowCmd, propertyUpdateCmd, propertyDeleteCmd)

	for _, c := range []*cobra.Command{propertyAddCmd, propertyUpdateCmd} {
		f := c.Flags()
		f.StringVarP(&propName, "name", "n", "", "property name")
		f.StringVar(&propAddress, "address", "", "street address")
		f.StringVar(&propCity, "city", "", "city")
		f.StringVarP(&propDescription, "description", "d", "", "free-text description")
		f.IntVar(&propBedrooms, "bedrooms", 1, "number of bedrooms")
		f.Float64Var(&propBathrooms, "bathrooms", 1, "number of bathrooms")
		f.IntVar(&propMaxGuests, "max-guests", 2, "maximum guests")
		f.Float64Var(&propBasePrice, "base-price", 0, "nightly base price")
		f.Float64Var(&propPrice, "price", 0, "current nightly price (default: base price)")
		f.StringSliceVar(&propAmenities, "amenity", nil, "amenity (repeatable or comma-separated)")
		f.StringSliceVar(&propPhotos, "photo", nil, "photo URL (repeatable)")
		f.StringVar(&propStatus, "status", "", "active or inactive")
	}
	_ = propertyAddCmd.MarkFlagRequired("name")
	_ = propertyAddCmd.MarkFlagRequired("base-price")
	_ = propertyAddCmd.MarkFlagRequired("address")
	_ = propertyAddCmd.MarkFlagRequired("city")

	propertyListCmd.Flags().StringVar(&propListCity, "city", "", "only properties in this city")
	propertyListCmd.Flags().StringVar(&propListStatus, "status", "", "only properties with this status")
}
