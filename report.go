package main

import (
	"encoding/json"

	"github.com/dnldd/swing/engine"
	"github.com/dnldd/swing/indicator"
	"github.com/dnldd/swing/risk"
)

// alertReport is the printed form of an alert.
type alertReport struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Message        string `json:"message"`
	Suggestion     string `json:"suggestion,omitempty"`
	ActionRequired bool   `json:"actionRequired"`
}

// setupReport is the printed form of the best setup.
type setupReport struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Direction  string    `json:"direction"`
	Entry      float64   `json:"entry"`
	EntryRange []float64 `json:"entryRange"`
	StopLoss   float64   `json:"stopLoss"`
	Target     float64   `json:"target"`
	RiskReward float64   `json:"riskReward"`
	OK         bool      `json:"ok"`
	Quantity   int       `json:"quantity"`
	SizeReason string    `json:"sizeReason"`
	RiskLevel  string    `json:"riskLevel,omitempty"`
	Quality    string    `json:"quality,omitempty"`
}

// report is the printed form of a single symbol analysis.
type report struct {
	Symbol           string        `json:"symbol"`
	Error            string        `json:"error,omitempty"`
	InsufficientData bool          `json:"insufficientData"`
	LastPrice        float64       `json:"lastPrice"`
	Trend            string        `json:"trend"`
	Regime           string        `json:"regime,omitempty"`
	Indicators       indicator.Set `json:"indicators,omitempty"`
	EntryZone        []float64     `json:"entryZone,omitempty"`
	Score            int           `json:"score"`
	Grade            string        `json:"grade,omitempty"`
	Confidence       float64       `json:"confidence"`
	Ranking          string        `json:"ranking,omitempty"`
	Setup            *setupReport  `json:"setup,omitempty"`
	Alerts           []alertReport `json:"alerts"`
	Warnings         []string      `json:"warnings"`
}

// buildReport condenses the provided analysis, sizing the best setup with the provided risk
// budget.
func buildReport(analysis *engine.Analysis, budget risk.SizeInput) *report {
	rep := &report{
		Symbol:           analysis.Symbol,
		Error:            analysis.Error,
		InsufficientData: analysis.InsufficientData,
		LastPrice:        analysis.LastPrice,
		Trend:            analysis.Trend.String(),
		Indicators:       analysis.Indicators,
		Alerts:           make([]alertReport, 0, len(analysis.Alerts)),
		Warnings:         analysis.Warnings,
	}

	if analysis.Regime != nil {
		rep.Regime = analysis.Regime.Regime.String()
	}
	if analysis.EntryZone != nil {
		rep.EntryZone = []float64{analysis.EntryZone.Low, analysis.EntryZone.High}
	}
	if analysis.Score != nil {
		rep.Score = analysis.Score.Score
		rep.Grade = analysis.Score.Grade.String()
	}
	if analysis.Confidence != nil {
		rep.Confidence = analysis.Confidence.Value
	}

	for _, a := range analysis.Alerts {
		rep.Alerts = append(rep.Alerts, alertReport{
			Type:           a.Type.String(),
			Severity:       a.Severity.String(),
			Message:        a.Message,
			Suggestion:     a.Suggestion,
			ActionRequired: a.ActionRequired,
		})
	}

	if analysis.Ranking == nil {
		return rep
	}

	rep.Ranking = analysis.Ranking.Reason
	best := analysis.Ranking.Best
	if best == nil {
		return rep
	}

	budget.Entry = best.Skeleton.Entry
	budget.StopLoss = best.Skeleton.StopLoss
	size := risk.CalculatePositionSize(budget)

	rep.Setup = &setupReport{
		ID:         best.ID,
		Name:       best.Name,
		Direction:  best.Skeleton.Type.String(),
		Entry:      best.Skeleton.Entry,
		EntryRange: []float64{best.Skeleton.EntryRange.Low, best.Skeleton.EntryRange.High},
		StopLoss:   best.Skeleton.StopLoss,
		Target:     best.Skeleton.Target,
		RiskReward: best.Skeleton.RiskReward,
		OK:         best.OK,
		Quantity:   size.Quantity,
		SizeReason: size.Reason,
	}
	if analysis.Risk != nil {
		rep.Setup.RiskLevel = analysis.Risk.Level.String()
		rep.Setup.Quality = analysis.Risk.Quality.String()
	}

	return rep
}

// marshalReport encodes the provided report as indented json.
func marshalReport(rep *report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}
