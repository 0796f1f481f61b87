package entity

// PaymentTerms 付款条件
const (
	PaymentTermsNet15     = "Net 15"
	PaymentTermsNet30     = "Net 30"
	PaymentTermsNet45     = "Net 45"
	PaymentTerms2_10Net30 = "2/10 Net 30"
	PaymentTermsCOD       = "COD"
)

var PaymentTermsList = []string{
	PaymentTermsNet15,
	PaymentTermsNet30,
	PaymentTermsNet45,
	PaymentTerms2_10Net30,
	PaymentTermsCOD,
}

// IsValidPaymentTerms reports whether terms is one of the fixed payment terms.
func IsValidPaymentTerms(terms string) bool {
	for _, t := range PaymentTermsList {
		if t == terms {
			return true
		}
	}
	return false
}

// Supplier 供应商
type Supplier struct {
	Model
	Name          string `json:"name" gorm:"size:200;not null"`
	ContactPerson string `json:"contact_person" gorm:"size:100"`
	Email         string `json:"email" gorm:"size:100"`
	Phone         string `json:"phone" gorm:"size:32"`
	Address       string `json:"address" gorm:"size:500"`
	PaymentTerms  string `json:"payment_terms" gorm:"size:32"`
}

func (Supplier) TableName() string {
	return "inv_suppliers"
}
