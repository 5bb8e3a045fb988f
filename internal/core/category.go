package core

// Category is a closed enumeration of expense categories. The zero value is
// not valid; every category-handling switch can rely on All for
// exhaustiveness.
type Category string

const (
	// Food & dining.
	FoodDining  Category = "FOOD_DINING"
	Groceries   Category = "GROCERIES"
	Restaurants Category = "RESTAURANTS"
	CoffeeTea   Category = "COFFEE_TEA"
	FastFood    Category = "FAST_FOOD"
	Delivery    Category = "DELIVERY"

	// Transportation.
	Transportation     Category = "TRANSPORTATION"
	Fuel               Category = "FUEL"
	PublicTransport    Category = "PUBLIC_TRANSPORT"
	TaxiRideshare      Category = "TAXI_RIDESHARE"
	Parking            Category = "PARKING"
	VehicleMaintenance Category = "VEHICLE_MAINTENANCE"

	// Shopping & retail.
	Shopping     Category = "SHOPPING"
	Clothing     Category = "CLOTHING"
	Electronics  Category = "ELECTRONICS"
	Books        Category = "BOOKS"
	HomeGoods    Category = "HOME_GOODS"
	PersonalCare Category = "PERSONAL_CARE"

	// Entertainment & leisure.
	Entertainment Category = "ENTERTAINMENT"
	MoviesTV      Category = "MOVIES_TV"
	Gaming        Category = "GAMING"
	Sports        Category = "SPORTS"
	Hobbies       Category = "HOBBIES"
	Events        Category = "EVENTS"

	// Health & wellness.
	Healthcare   Category = "HEALTHCARE"
	Medicine     Category = "MEDICINE"
	DoctorVisits Category = "DOCTOR_VISITS"
	Dental       Category = "DENTAL"
	Vision       Category = "VISION"
	Fitness      Category = "FITNESS"

	// Housing & utilities.
	Housing     Category = "HOUSING"
	Rent        Category = "RENT"
	Mortgage    Category = "MORTGAGE"
	Utilities   Category = "UTILITIES"
	Internet    Category = "INTERNET"
	Maintenance Category = "MAINTENANCE"

	// Education & learning.
	Education     Category = "EDUCATION"
	Tuition       Category = "TUITION"
	BooksSupplies Category = "BOOKS_SUPPLIES"
	Courses       Category = "COURSES"
	Workshops     Category = "WORKSHOPS"

	// Business & work.
	Business       Category = "BUSINESS"
	OfficeSupplies Category = "OFFICE_SUPPLIES"
	Software       Category = "SOFTWARE"
	Marketing      Category = "MARKETING"
	Professional   Category = "PROFESSIONAL"

	// Travel & vacation.
	Travel        Category = "TRAVEL"
	Accommodation Category = "ACCOMMODATION"
	Flights       Category = "FLIGHTS"
	CarRental     Category = "CAR_RENTAL"
	Activities    Category = "ACTIVITIES"

	// Personal & miscellaneous.
	Personal      Category = "PERSONAL"
	Gifts         Category = "GIFTS"
	Donations     Category = "DONATIONS"
	Insurance     Category = "INSURANCE"
	Subscriptions Category = "SUBSCRIPTIONS"
	Other         Category = "OTHER"
)

var displayNames = map[Category]string{
	FoodDining:         "Food & Dining",
	Groceries:          "Groceries",
	Restaurants:        "Restaurants",
	CoffeeTea:          "Coffee & Tea",
	FastFood:           "Fast Food",
	Delivery:           "Food Delivery",
	Transportation:     "Transportation",
	Fuel:               "Fuel & Gas",
	PublicTransport:    "Public Transport",
	TaxiRideshare:      "Taxi & Rideshare",
	Parking:            "Parking",
	VehicleMaintenance: "Vehicle Maintenance",
	Shopping:           "Shopping",
	Clothing:           "Clothing & Apparel",
	Electronics:        "Electronics",
	Books:              "Books & Media",
	HomeGoods:          "Home & Garden",
	PersonalCare:       "Personal Care",
	Entertainment:      "Entertainment",
	MoviesTV:           "Movies & TV",
	Gaming:             "Gaming",
	Sports:             "Sports & Fitness",
	Hobbies:            "Hobbies",
	Events:             "Events & Shows",
	Healthcare:         "Healthcare",
	Medicine:           "Medicine & Pharmacy",
	DoctorVisits:       "Doctor Visits",
	Dental:             "Dental Care",
	Vision:             "Vision Care",
	Fitness:            "Fitness & Gym",
	Housing:            "Housing",
	Rent:               "Rent",
	Mortgage:           "Mortgage",
	Utilities:          "Utilities",
	Internet:           "Internet & Phone",
	Maintenance:        "Home Maintenance",
	Education:          "Education",
	Tuition:            "Tuition & Fees",
	BooksSupplies:      "Books & Supplies",
	Courses:            "Online Courses",
	Workshops:          "Workshops & Training",
	Business:           "Business",
	OfficeSupplies:     "Office Supplies",
	Software:           "Software & Tools",
	Marketing:          "Marketing & Advertising",
	Professional:       "Professional Services",
	Travel:             "Travel",
	Accommodation:      "Accommodation",
	Flights:            "Flights",
	CarRental:          "Car Rental",
	Activities:         "Travel Activities",
	Personal:           "Personal",
	Gifts:              "Gifts",
	Donations:          "Donations & Charity",
	Insurance:          "Insurance",
	Subscriptions:      "Subscriptions",
	Other:              "Other",
}

// categoryOrder fixes the enumeration order for All and for deterministic
// tie-breaking in reports.
var categoryOrder = []Category{
	FoodDining, Groceries, Restaurants, CoffeeTea, FastFood, Delivery,
	Transportation, Fuel, PublicTransport, TaxiRideshare, Parking, VehicleMaintenance,
	Shopping, Clothing, Electronics, Books, HomeGoods, PersonalCare,
	Entertainment, MoviesTV, Gaming, Sports, Hobbies, Events,
	Healthcare, Medicine, DoctorVisits, Dental, Vision, Fitness,
	Housing, Rent, Mortgage, Utilities, Internet, Maintenance,
	Education, Tuition, BooksSupplies, Courses, Workshops,
	Business, OfficeSupplies, Software, Marketing, Professional,
	Travel, Accommodation, Flights, CarRental, Activities,
	Personal, Gifts, Donations, Insurance, Subscriptions, Other,
}

// All returns every category in enumeration order.
func All() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Valid reports whether c is part of the closed category set.
func (c Category) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

// DisplayName returns the human-readable label for the category.
func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory maps a stable identifier back to its Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}
