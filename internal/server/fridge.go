package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	fridgedomain "github.com/homefridge/fridgely/internal/fridge/domain"
)

type createFridgeRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateFridge(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createFridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.fridgeSvc.Create(c.Request.Context(), fridgedomain.CreateFridgeRequest{
		Name:   req.Name,
		UserID: userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListFridges(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.fridgeSvc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type addMemberRequest struct {
	MemberID string `json:"member_id"`
}

func (s *Server) AddFridgeMember(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	fridgeID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	memberID, err := parseOptionalID(req.MemberID)
	if err != nil || memberID == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err = s.fridgeSvc.AddMember(c.Request.Context(), fridgedomain.AddMemberRequest{
		FridgeID: fridgeID,
		UserID:   userID,
		MemberID: *memberID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) RemoveFridgeMember(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	fridgeID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	memberID, err := parseIDParam(c, "userId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.fridgeSvc.RemoveMember(c.Request.Context(), fridgedomain.RemoveMemberRequest{
		FridgeID: fridgeID,
		UserID:   userID,
		MemberID: memberID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requireAccess resolves the caller and checks fridge membership in one
// step for fridge-scoped handlers.
func (s *Server) requireAccess(c *gin.Context) (fridgeID, userID snowflake.ID, ok bool) {
	uid, err := currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return 0, 0, false
	}
	fid, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return 0, 0, false
	}
	if _, err := s.fridgeSvc.CheckAccess(c.Request.Context(), fid, uid); err != nil {
		AbortWithError(c, err)
		return 0, 0, false
	}
	return fid, uid, true
}
