package model

// Customer: владелец заказов; заказ ссылается на клиента, но не владеет им
type Customer struct {
	ID          int64
	FirstName   string
	LastName    string
	PhoneNumber string
	Email       string
}

// CustomerRequest: входные данные для создания или обновления клиента
type CustomerRequest struct {
	FirstName   string `json:"firstName" validate:"notblank"`
	LastName    string `json:"lastName" validate:"notblank"`
	PhoneNumber string `json:"phoneNumber" validate:"phone"`
	Email       string `json:"email" validate:"notblank,email_strict"`
}

// CustomerResponse: проекция клиента для внешних потребителей
type CustomerResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
}

func (c Customer) ToResponse() CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
	}
}

// Apply переносит поля запроса в клиента, идентификатор не трогает
func (r CustomerRequest) Apply(customer *Customer) {
	customer.FirstName = r.FirstName
	customer.LastName = r.LastName
	customer.PhoneNumber = r.PhoneNumber
	customer.Email = r.Email
}
