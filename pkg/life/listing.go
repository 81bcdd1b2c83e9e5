package life

import "strings"

// ListingType is the marketplace's property-type enum.
type ListingType string

const (
	ListingHouseBuy     ListingType = "HOUSEBUY"
	ListingApartmentBuy ListingType = "APARTMENTBUY"
)

// ListingTypeFor maps a goal estate type onto the marketplace enum.
func ListingTypeFor(t EstateType) ListingType {
	if strings.EqualFold(string(t), string(EstateHouse)) {
		return ListingHouseBuy
	}
	return ListingApartmentBuy
}

// ListingQuery asks for listings in a city near a target size.
type ListingQuery struct {
	City         string      `json:"city"`
	Type         ListingType `json:"estateType"`
	SquareMeters float64     `json:"squareMeters"`
}

// Listing is a property for sale found on the marketplace.
type Listing struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	BuyingPrice float64 `json:"buyingPrice"`
	Zip         string  `json:"zip"`
	Rooms       float64 `json:"rooms"`
	Size        float64 `json:"squareMeter"`
	ImageURL    string  `json:"imageUrl"`
}
