package models

// Community is the top-level geographic unit of the program. Its name is the
// natural key, matching the field-office registers, so villages reference it
// by name rather than by a surrogate id.
type Community struct {
	Name             string   `gorm:"primaryKey;size:100" json:"name"`
	Alias            *string  `gorm:"size:100" json:"alias,omitempty"`
	Country          *string  `gorm:"size:100" json:"country,omitempty"`
	Province         *string  `gorm:"size:100" json:"province,omitempty"`
	District         *string  `gorm:"size:100" json:"district,omitempty"`
	Area             *float64 `json:"area,omitempty"`
	ForestArea       *float64 `json:"forestArea,omitempty"`
	PastureLand      *float64 `json:"pastureLand,omitempty"`
	ProtectionStatus *string  `gorm:"size:50" json:"protectionStatus,omitempty"`
	GPSLat           *float64 `json:"gpsLat,omitempty"`
	GPSLong          *float64 `json:"gpsLong,omitempty"`

	Villages []Village `gorm:"foreignKey:CommunityName;references:Name" json:"villages,omitempty"`
}

// Village belongs to exactly one community. Population and GPS fields are
// optional; population drives the size-range grouping in the view engine.
type Village struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	CommunityName string     `gorm:"size:100;not null;index" json:"communityName"`
	Community     *Community `gorm:"foreignKey:CommunityName;references:Name" json:"community,omitempty"`
	Population    *int       `json:"population,omitempty"`
	Area          *float64   `json:"area,omitempty"`
	GPSLat        *float64   `json:"gpsLat,omitempty"`
	GPSLong       *float64   `json:"gpsLong,omitempty"`
}

// Beneficiary is a livestock-owning household head registered in a village.
type Beneficiary struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Name       string   `gorm:"size:100;not null" json:"name"`
	FatherName *string  `gorm:"size:100" json:"fatherName,omitempty"`
	VillageID  uint     `gorm:"not null;index" json:"villageId"`
	Village    *Village `gorm:"foreignKey:VillageID" json:"village,omitempty"`
}
