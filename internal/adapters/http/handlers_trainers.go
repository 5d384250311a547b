package web

import (
	"net/http"

	"studio/internal/application/orchestrators"
	"studio/internal/domain/trainer"
)

type trainerJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Active bool   `json:"active"`
}

func toTrainerJSON(t trainer.Trainer) trainerJSON {
	return trainerJSON{ID: t.ID, Name: t.Name, Email: t.Email, Active: t.Active}
}

// handleListTrainers handles GET /api/trainers
func handleListTrainers(w http.ResponseWriter, r *http.Request) {
	list, err := stores.TrainerStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]trainerJSON, 0, len(list))
	for _, t := range list {
		out = append(out, toTrainerJSON(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"trainers": out})
}

type registerTrainerRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

// handleRegisterTrainer handles POST /api/trainers
func handleRegisterTrainer(w http.ResponseWriter, r *http.Request) {
	var req registerTrainerRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	t, err := orchestrators.ExecuteRegisterTrainer(r.Context(),
		orchestrators.RegisterTrainerInput{Name: req.Name, Email: req.Email},
		orchestrators.RegisterTrainerDeps{TrainerStore: stores.TrainerStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTrainerJSON(t))
}
