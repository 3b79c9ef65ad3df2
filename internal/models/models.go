package models

type Hospital struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	DocumentLink string `json:"document_link"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	IsVerified   bool   `gorm:"default:false"            json:"is_verified"`
}

type SuperAdmin struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

// Patient.NationalID holds hex ciphertext, never the plain value.
type Patient struct {
	ID         string `gorm:"primaryKey"           json:"id"`
	FirstName  string `gorm:"not null"             json:"first_name"`
	LastName   string `gorm:"not null"             json:"last_name"`
	DOB        string `gorm:"not null"             json:"dob"`
	NationalID string `gorm:"uniqueIndex;not null" json:"national_id"`
}

// MedicalRecord.Diagnosis and Treatment hold hex ciphertext in the store.
type MedicalRecord struct {
	ID         string `gorm:"primaryKey"     json:"id"`
	PatientID  string `gorm:"index;not null" json:"patient_id"`
	HospitalID uint   `gorm:"not null"       json:"hospital_id"`
	Diagnosis  string `gorm:"not null"       json:"diagnosis"`
	Treatment  string `gorm:"not null"       json:"treatment"`
	RecordDate string `gorm:"not null"       json:"record_date"`
	FileLink   string `json:"file_link"`
}
