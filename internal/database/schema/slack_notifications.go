package schema

type SlackNotifications struct {
	Source    string `gorm:"not null"`
	ChainID   int    `gorm:"not null"`
	Message   string `gorm:"type:text"`
	Counter   int    `gorm:"default:1"`
	Processed bool   `gorm:"default:false;index"`
	Base
}
