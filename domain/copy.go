package domain

import "time"

type CopyStatus string

const (
	CopyAvailable   CopyStatus = "Available"
	CopyMaintenance CopyStatus = "Maintenance"
	CopyLoaned      CopyStatus = "Loaned"
	CopyReserved    CopyStatus = "Reserved"
)

var CopyStatuses = []CopyStatus{CopyAvailable, CopyMaintenance, CopyLoaned, CopyReserved}

type Copy struct {
	Document        `bson:",inline"`
	ReleaseID       string     `bson:"release" json:"release"`
	Imprint         string     `bson:"imprint" json:"imprint"`
	Status          CopyStatus `bson:"status" json:"status"`
	DueBack         *time.Time `bson:"due_back,omitempty" json:"due_back,omitempty"`
	MediaCondition  string     `bson:"media_cond,omitempty" json:"media_cond,omitempty"`
	SleeveCondition string     `bson:"sleeve_cond,omitempty" json:"sleeve_cond,omitempty"`
	Cost            *float64   `bson:"cost,omitempty" json:"cost,omitempty"`
	NumDiscs        *int       `bson:"num_discs,omitempty" json:"num_discs,omitempty"`
	DateAcquired    *time.Time `bson:"date_ac,omitempty" json:"date_ac,omitempty"`
	Crates          []string   `bson:"crates" json:"crates"`
}
