package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/middleearth/character"
	mw "github.com/kasuganosora/middleearth/middleware"
)

// CharacterHandler handles character REST endpoints. Every route acts on the
// authenticated user's own characters.
type CharacterHandler struct {
	svc *character.Service
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(svc *character.Service) *CharacterHandler {
	return &CharacterHandler{svc: svc}
}

// RollAttributes handles POST /api/characters/roll-attributes.
func (h *CharacterHandler) RollAttributes(c *gin.Context) {
	res, err := h.svc.RollAttributes()
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", res)
}

// List handles GET /api/characters.
func (h *CharacterHandler) List(c *gin.Context) {
	chars, err := h.svc.List(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", chars)
}

// Create handles POST /api/characters.
func (h *CharacterHandler) Create(c *gin.Context) {
	var req character.CreateInput
	if !bind(c, &req) {
		return
	}
	ch, err := h.svc.Create(c.Request.Context(), mw.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "character created", ch)
}

// Get handles GET /api/characters/:id.
func (h *CharacterHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "character")
	if !ok {
		return
	}
	ch, err := h.svc.Get(c.Request.Context(), mw.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", ch)
}

// Update handles PATCH /api/characters/:id.
func (h *CharacterHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "character")
	if !ok {
		return
	}
	var req character.UpdateInput
	if !bind(c, &req) {
		return
	}
	ch, err := h.svc.Update(c.Request.Context(), mw.GetUserID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "character updated", ch)
}

// Delete handles DELETE /api/characters/:id.
func (h *CharacterHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "character")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), mw.GetUserID(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "character deleted", nil)
}

// LevelUp handles POST /api/characters/:id/level-up.
func (h *CharacterHandler) LevelUp(c *gin.Context) {
	id, ok := pathID(c, "id", "character")
	if !ok {
		return
	}
	ch, err := h.svc.LevelUp(c.Request.Context(), mw.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "level up", ch)
}

type experienceRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// GrantExperience handles POST /api/characters/:id/experience.
func (h *CharacterHandler) GrantExperience(c *gin.Context) {
	id, ok := pathID(c, "id", "character")
	if !ok {
		return
	}
	var req experienceRequest
	if !bind(c, &req) {
		return
	}
	ch, err := h.svc.GrantExperience(c.Request.Context(), mw.GetUserID(c), id, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "experience granted", ch)
}

// ListSkills handles GET /api/characters/:id/skills.
func (h *CharacterHandler) ListSkills(c *gin.Context) {
	id, ok := pathID(c, "id", "character")
	if !ok {
		return
	}
	skills, err := h.svc.ListSkills(c.Request.Context(), mw.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", skills)
}

// LearnSkill handles POST /api/characters/:id/skills.
func (h *CharacterHandler) LearnSkill(c *gin.Context) {
	id, ok := pathID(c, "id", "character")
	if !ok {
		return
	}
	var req character.SkillInput
	if !bind(c, &req) {
		return
	}
	sk, err := h.svc.LearnSkill(c.Request.Context(), mw.GetUserID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "skill learned", sk)
}

// Stats handles GET /api/characters/:id/stats.
func (h *CharacterHandler) Stats(c *gin.Context) {
	id, ok := pathID(c, "id", "character")
	if !ok {
		return
	}
	st, err := h.svc.Stats(c.Request.Context(), mw.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", st)
}
