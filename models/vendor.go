package models

const (
	VendorTypeVendor    = "vendor"
	VendorTypeOrganizer = "organizer"
)

// Vendor is a marketplace contractor as stored in the snapshot collection.
type Vendor struct {
	ID            int      `bson:"id" json:"id"`
	Type          string   `bson:"type" json:"type"` // "vendor" or "organizer"
	CompanyName   string   `bson:"companyName" json:"companyName"`
	ContactPerson string   `bson:"contactPerson,omitempty" json:"contactPerson,omitempty"`
	City          string   `bson:"city" json:"city"`
	Rating        float64  `bson:"rating" json:"rating"`
	ReviewsCount  int      `bson:"reviewsCount" json:"reviewsCount"`
	Calendar      []string `bson:"calendar" json:"calendar"` // booked dates, "YYYY-MM-DD"
}

// IsBookedOn reports whether the vendor's calendar already holds the date.
func (v Vendor) IsBookedOn(date string) bool {
	if date == "" {
		return false
	}
	for _, d := range v.Calendar {
		if d == date {
			return true
		}
	}
	return false
}

// Service is an offer published by a vendor.
type Service struct {
	ID       int     `bson:"id" json:"id"`
	VendorID int     `bson:"vendorId" json:"vendorId"`
	Name     string  `bson:"name" json:"name"`
	Category string  `bson:"category" json:"category"`
	PriceMin float64 `bson:"priceMin" json:"priceMin"`
	PriceMax float64 `bson:"priceMax" json:"priceMax"`
}

// VendorDetails is a vendor together with its services.
type VendorDetails struct {
	Vendor   `bson:",inline"`
	Services []Service `json:"services"`
}

// VendorFilter narrows snapshot reads. Zero values mean no restriction.
type VendorFilter struct {
	City      string
	MinRating float64
	Types     []string
	Limit     int
}
