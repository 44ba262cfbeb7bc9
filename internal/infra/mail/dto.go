package mail

type LeadEmailData struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Age       int
	Score     int
	Category  string
	ImageURL  string
	LeadCode  string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SalesTo  string
}
