package handlers

import (
	"net/http"

	"github.com/arnavshah/duty-rotation-go/pkg/models"
	"github.com/arnavshah/duty-rotation-go/pkg/roster"
	"github.com/gin-gonic/gin"
)

// ValidateInput checks a roster against the shift size without generating
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	cfg := h.requestConfig(input)
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	entries := roster.Parse(input.Roster, cfg.Delimiter)
	if len(entries) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one roster entry is required",
		})
		return
	}

	if err := roster.Validate(entries, cfg.ShiftSize); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	members, groups := 0, 0
	for _, e := range entries {
		members += e.Size()
		if e.IsGroup() {
			groups++
		}
	}

	if members < cfg.ShiftSize {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Fewer members than one shift needs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"entry_count":  len(entries),
			"member_count": members,
			"group_count":  groups,
			"shift_size":   cfg.ShiftSize,
			"context_size": cfg.ContextSize,
		},
	})
}
