package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskProcessTemplatesWarm = "process.templates.warm"

// TemplateWarmPayload bounds one sweep over in-progress orders.
type TemplateWarmPayload struct {
	Limit int `json:"limit"`
}

func NewTemplateWarmTask(payload TemplateWarmPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProcessTemplatesWarm, data), nil
}

func ParseTemplateWarmPayload(task *asynq.Task) (TemplateWarmPayload, error) {
	var payload TemplateWarmPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TemplateWarmPayload{}, err
	}
	return payload, nil
}
