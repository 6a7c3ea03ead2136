package database

type UpdateUserParams struct {
	UserId   string
	Username string
	Email    string
	Phone    string
}

type CreateServiceParams struct {
	OwnerId     string
	Title       string
	Description string
	Category    string
	Price       float64
	Lat         *float64
	Lng         *float64
}

type UpdateServiceParams struct {
	ServiceId   string
	Title       string
	Description string
	Category    string
	Price       float64
}

type CreateMessageParams struct {
	SenderId    string
	RecipientId string
	Content     string
}

type CreateReviewParams struct {
	ServiceId string
	AuthorId  string
	Rating    int
	Comment   string
}

type UpdateReviewParams struct {
	ReviewId string
	Rating   int
	Comment  string
}

type CreateContactParams struct {
	UserId  string
	Subject string
	Message string
}
