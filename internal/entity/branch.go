package entity

type Branch struct {
	ID     int64  `json:"id" db:"id"`
	NameEn string `json:"name_en" db:"name_en"`
	NameAr string `json:"name_ar" db:"name_ar"`
	City   string `json:"city" db:"city"`
}
