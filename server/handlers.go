package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanzeeb3/mailercloud-go/wpforms"
)

type submission struct {
	Fields   wpforms.Fields   `json:"fields"`
	Entry    wpforms.Entry    `json:"entry"`
	FormData wpforms.FormData `json:"form_data"`
	EntryID  int64            `json:"entry_id"`
}

func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.info)
}

func (s *Server) handleAuth(c *gin.Context) {
	var data wpforms.AuthData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := s.provider.APIAuth(c.Request.Context(), data, c.Query("form_id"))
	if err != nil {
		if errors.Is(err, wpforms.ErrAuthFailed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Errorf("auth: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save account"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) handleLists(c *gin.Context) {
	lists := s.provider.APILists(c.Request.Context(), c.Query("connection_id"), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

func (s *Server) handleFields(c *gin.Context) {
	fields := s.provider.APIFields(c.Query("connection_id"), c.Query("account_id"), c.Query("list_id"))
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}

func (s *Server) handleGroups(c *gin.Context) {
	groups, err := s.provider.APIGroups(c.Query("connection_id"), c.Query("account_id"), c.Query("list_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (s *Server) handleAuthForm(c *gin.Context) {
	html, err := s.provider.RenderAuthForm(c.Request.Context())
	if err != nil {
		s.logger.Errorf("auth form: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not render form"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// handleSubmission runs the provider synchronously. Delivery results are
// not reported; 202 only means the submission was taken.
func (s *Server) handleSubmission(c *gin.Context) {
	var sub submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission: " + err.Error()})
		return
	}

	s.provider.ProcessEntry(c.Request.Context(), sub.Fields, sub.Entry, sub.FormData, sub.EntryID)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
