package validation

// defaultMessages: тексты нарушений по умолчанию, ключ "поле.тег"
// формулировки не являются контрактом и переопределяются через конфиг
func defaultMessages() map[string]string {
	return map[string]string{
		"customerId.required":     "Customer id must not be null",
		"customerId.gt":           "Customer id must be positive",
		"orderDate.required":      "Order date must not be null",
		"orderDate.pastorpresent": "Order date must be in the past or present",
		"statusPayment.required":  "Payment status must not be null",
		"description.notblank":    "Description must not be blank",
		"description.max":         "Description must not exceed 255 characters",
		"totalPrice.required":     "Total price must not be null",
		"totalPrice.dgt":          "Total price must be greater than 0.0",
		"firstName.notblank":      "First name is required",
		"lastName.notblank":       "Last name is required",
		"phoneNumber.phone":       "Phone number must match the format 380XXXXXXXXX",
		"email.notblank":          "Email is required",
		"email.email_strict":      "Email is invalid",
	}
}
