package dto

type ScrapeTriggerRequest struct {
	JobTitle string `json:"job_title"`
	Location string `json:"location"`
}
