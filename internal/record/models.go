package record

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Record is one accepted outage submission. It is written once and never
// updated or deleted.
type Record struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Sequence          int64     `gorm:"not null;uniqueIndex" json:"sequence"`
	ApplicationNumber string    `gorm:"not null;uniqueIndex" json:"application_number"`

	Region     string `gorm:"not null" json:"region"`
	Circle     string `gorm:"not null" json:"circle"`
	Division   string `gorm:"not null" json:"division"`
	Zone       string `json:"zone,omitempty"`
	Substation string `gorm:"not null" json:"substation"`
	Feeder     string `gorm:"not null" json:"feeder"`
	DTR        string `gorm:"column:dtr;not null" json:"dtr"`
	DTRCode    string `gorm:"column:dtr_code;not null;index" json:"dtr_code"`
	FeederCode string `gorm:"column:feeder_code;not null" json:"feeder_code"`

	MSNAuto     string `gorm:"column:msn_auto" json:"msn_auto"`
	MSNOverride string `gorm:"column:msn_override" json:"msn_override"`
	MSNFinal    string `gorm:"column:msn_final;not null" json:"msn_final"`

	OffTime     string `gorm:"not null" json:"off_time"`
	OnTime      string `gorm:"not null" json:"on_time"`
	EventDate   string `gorm:"not null" json:"date"`
	OfficerName string `gorm:"not null" json:"officer_name"`
	Mobile      string `gorm:"not null" json:"mobile"`

	// Path is the resolved hierarchy in chain order.
	Path pq.StringArray `gorm:"type:text[]" json:"path"`

	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Record) TableName() string {
	return "indexing.submissions"
}

// Columns is the fixed header of the records sheet, in Row order.
func Columns() []string {
	return []string{
		"Region", "Circle", "Division", "Zone", "Sub station", "Feeder", "Dtr", "Dtr code", "Feeder code",
		"MSN (MDM)", "MSN (New)", "Final MSN",
		"DTR Off Time", "DTR On Time", "Date",
		"AE/JE Name", "Mobile Number", "Application Number",
	}
}

// Row returns the record's values in Columns order.
func (r Record) Row() []string {
	return []string{
		r.Region, r.Circle, r.Division, r.Zone, r.Substation, r.Feeder, r.DTR, r.DTRCode, r.FeederCode,
		r.MSNAuto, r.MSNOverride, r.MSNFinal,
		r.OffTime, r.OnTime, r.EventDate,
		r.OfficerName, r.Mobile, r.ApplicationNumber,
	}
}
