package models

import (
	"time"

	"gorm.io/datatypes"
)

// CycleKind names a scheduled job.
type CycleKind string

const (
	CycleKindSnapshot    CycleKind = "snapshot"
	CycleKindForecast    CycleKind = "forecast"
	CycleKindAnomaly     CycleKind = "anomaly"
	CycleKindMaintenance CycleKind = "maintenance"
)

// CycleState is a step of the cycle state machine.
type CycleState string

const (
	CycleStateIdle            CycleState = "IDLE"
	CycleStateEnsuringHistory CycleState = "ENSURING_HISTORY"
	CycleStateProjecting      CycleState = "PROJECTING"
	CycleStateAlerting        CycleState = "ALERTING"
	CycleStateScanning        CycleState = "SCANNING"
	CycleStateDone            CycleState = "DONE"
	CycleStateFailed          CycleState = "FAILED"
)

// SkippedMaterial records why one material was left out of a cycle.
type SkippedMaterial struct {
	MaterialID string `json:"material_id"`
	Reason     string `json:"reason"`
}

// CycleRun is the persisted outcome of one cycle execution.
type CycleRun struct {
	Base
	Kind               CycleKind      `gorm:"type:varchar(16);not null;index" json:"kind"`
	State              CycleState     `gorm:"type:varchar(24);not null" json:"state"`
	Message            string         `gorm:"type:text" json:"message,omitempty"`
	HistorySynthesized bool           `json:"history_synthesized"`
	ProcessedCount     int            `json:"processed_count"`
	AlertsRaised       int            `json:"alerts_raised"`
	Skipped            datatypes.JSON `json:"skipped,omitempty"`
	StartedAt          time.Time      `gorm:"not null;index" json:"started_at"`
	FinishedAt         *time.Time     `json:"finished_at,omitempty"`
}
