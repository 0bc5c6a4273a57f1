package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/middleearth/catalog"
	"github.com/kasuganosora/middleearth/character"
	"github.com/kasuganosora/middleearth/model"
)

// CatalogHandler serves the read-only races and classes.
type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

type raceView struct {
	model.Race
	TotalAttributeModifier int `json:"total_attribute_modifier"`
}

// Races handles GET /api/races.
func (h *CatalogHandler) Races(c *gin.Context) {
	races := h.cat.Races()
	out := make([]raceView, len(races))
	for i, r := range races {
		out[i] = raceView{Race: r, TotalAttributeModifier: character.TotalRacialModifier(r)}
	}
	respond(c, http.StatusOK, "", out)
}

// Race handles GET /api/races/:id.
func (h *CatalogHandler) Race(c *gin.Context) {
	r, err := h.cat.Race(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", raceView{Race: r, TotalAttributeModifier: character.TotalRacialModifier(r)})
}

// Classes handles GET /api/classes.
func (h *CatalogHandler) Classes(c *gin.Context) {
	respond(c, http.StatusOK, "", h.cat.Classes())
}

// Class handles GET /api/classes/:id.
func (h *CatalogHandler) Class(c *gin.Context) {
	cl, err := h.cat.Class(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", cl)
}
