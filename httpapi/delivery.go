package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/sweetpotato0/dealsense/delivery"
)

// sendEmail is the delivery gateway endpoint. It has no dependency on the
// generation path; the sender itself decides between the real provider
// and the mock fallback.
func (s *Server) sendEmail(c *gin.Context) {
	var in delivery.Request
	if err := s.bind(c, &in); err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.email.Send(c.Request.Context(), &in)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, result)
}
