package dto

import (
	"gym-statistics/internal/entity"
	"gym-statistics/internal/mapper"
)

type DashboardSelectionQuery struct {
	Owner       string `query:"owner"`
	MuscleGroup string `query:"muscle_group"`
	Exercise    string `query:"exercise"`
}

func (q DashboardSelectionQuery) ToEntity() entity.DashboardSelection {
	return entity.DashboardSelection{
		Owner:       q.Owner,
		MuscleGroup: q.MuscleGroup,
		Exercise:    q.Exercise,
	}
}

type DashboardSelectionResponse struct {
	Owner       string `json:"owner"`
	MuscleGroup string `json:"muscle_group"`
	Exercise    string `json:"exercise"`
}

type SeriesPointResponse struct {
	Date     string  `json:"date"`
	Weight   float64 `json:"weight"`
	Reps     []int   `json:"reps"`
	RepsText string  `json:"reps_text"`
}

type DashboardViewResponse struct {
	Owners       []string                   `json:"owners"`
	MuscleGroups []string                   `json:"muscle_groups"`
	Exercises    []string                   `json:"exercises"`
	Selection    DashboardSelectionResponse `json:"selection"`
	Series       []SeriesPointResponse      `json:"series"`
	Empty        bool                       `json:"empty"`
	Version      uint64                     `json:"version"`
}

type RefreshResponse struct {
	Reloaded bool   `json:"reloaded"`
	Version  uint64 `json:"version"`
}

func NewSeriesResponse(points []entity.SeriesPoint) []SeriesPointResponse {
	out := make([]SeriesPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, SeriesPointResponse{
			Date:     p.Date.Format(entity.DateLayout),
			Weight:   p.Weight,
			Reps:     append([]int{}, p.Reps.Sets...),
			RepsText: mapper.FormatReps(p.Reps),
		})
	}
	return out
}

func NewDashboardViewResponse(view entity.DashboardView) *DashboardViewResponse {
	return &DashboardViewResponse{
		Owners:       view.Owners,
		MuscleGroups: view.MuscleGroups,
		Exercises:    view.Exercises,
		Selection: DashboardSelectionResponse{
			Owner:       view.Selection.Owner,
			MuscleGroup: view.Selection.MuscleGroup,
			Exercise:    view.Selection.Exercise,
		},
		Series:  NewSeriesResponse(view.Series),
		Empty:   view.Empty(),
		Version: view.Version,
	}
}
