package users

// Address is a user's physical address. All fields are required when an
// address is provided.
type Address struct {
	Country   string `json:"country"`
	City      string `json:"city"`
	Street    string `json:"street"`
	FlatHouse string `json:"flat_house"`
}

// CreditCard holds non-functional test payment data. All fields are required
// when a card is provided.
type CreditCard struct {
	// Num is the 16-digit card number (format: XXXX-XXXX-XXXX-XXXX).
	Num string `json:"num"`

	// CVV is the 3-digit verification code.
	CVV string `json:"cvv"`

	// ExpDate is the expiration date (format: MM/YYYY).
	ExpDate string `json:"exp_date"`
}

// UserCreate is the request body for creating a user (POST /v1/users).
// Name, Surname, Email, and AboutMe are required; the rest are optional.
type UserCreate struct {
	Name        string      `json:"name"`
	Surname     string      `json:"surname"`
	Email       string      `json:"email"`
	AboutMe     string      `json:"about_me"`
	Phone       string      `json:"phone,omitempty"`
	DateOfBirth string      `json:"date_of_birth,omitempty"`
	Address     *Address    `json:"address,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	Company     string      `json:"company,omitempty"`
	Salary      *float64    `json:"salary,omitempty"`
	CreditCard  *CreditCard `json:"credit_card,omitempty"`
}

// UserUpdate is the request body for updating a user (PUT /v1/users/{id}).
// All fields are optional; only the fields present are updated.
type UserUpdate struct {
	Name        string      `json:"name,omitempty"`
	Surname     string      `json:"surname,omitempty"`
	Email       string      `json:"email,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	DateOfBirth string      `json:"date_of_birth,omitempty"`
	Address     *Address    `json:"address,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	Company     string      `json:"company,omitempty"`
	Salary      *float64    `json:"salary,omitempty"`
	CreditCard  *CreditCard `json:"credit_card,omitempty"`
}

// SearchQuery holds the optional filters for GET /v1/users/search.
// Name, Surname, and Email match partially (case-insensitive); Gender
// matches exactly. Multiple criteria combine with AND.
type SearchQuery struct {
	Name    string
	Surname string
	Email   string
	Gender  string
}
