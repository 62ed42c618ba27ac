package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/validation"
)

// bind decodes the JSON body into v and runs its struct tags
func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return badRequest(err)
	}
	if err := validation.Struct(v); err != nil {
		return badRequest(err)
	}
	return nil
}

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := bind(c, &req); err != nil {
		respond(c, err)
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		respond(c, err)
		return
	}
	s.issue(c, http.StatusCreated, user)
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		respond(c, err)
		return
	}

	user, err := s.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond(c, err)
		return
	}
	s.issue(c, http.StatusOK, user)
}

func (s *Server) issue(c *gin.Context, status int, user models.User) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(status, models.AuthResponse{Token: token, User: user})
}

// Habits

func (s *Server) listHabits(c *gin.Context) {
	habits, err := s.store.GetAllHabits(c.Request.Context())
	if err != nil {
		respond(c, err)
		return
	}
	if uid := c.Query("userId"); uid != "" {
		habits = models.FilterByUser(habits, uid)
	}
	c.JSON(http.StatusOK, habits)
}

func (s *Server) createHabit(c *gin.Context) {
	var h models.Habit
	if err := c.ShouldBindJSON(&h); err != nil {
		respond(c, badRequest(err))
		return
	}

	h.UserID = identity(c).UserID
	h.Name = strings.TrimSpace(h.Name)
	if h.ID == "" {
		h.ID = models.NewID()
	}
	if len(h.Week) == 0 {
		h.Week = models.GenerateWeek(s.now())
	}
	if err := validation.ValidateHabit(h); err != nil {
		respond(c, badRequest(err))
		return
	}

	if err := s.store.AddHabit(c.Request.Context(), h); err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, h)
}

// ownedHabit loads the habit addressed by :id and checks the caller owns it
func (s *Server) ownedHabit(c *gin.Context) (models.Habit, error) {
	h, err := s.store.GetHabit(c.Request.Context(), c.Param("id"))
	if err != nil {
		return models.Habit{}, err
	}
	if h.UserID != identity(c).UserID {
		return models.Habit{}, errNotOwner
	}
	return h, nil
}

func (s *Server) updateHabit(c *gin.Context) {
	existing, err := s.ownedHabit(c)
	if err != nil {
		respond(c, err)
		return
	}

	var h models.Habit
	if err := c.ShouldBindJSON(&h); err != nil {
		respond(c, badRequest(err))
		return
	}
	h.ID = existing.ID
	h.UserID = existing.UserID
	if err := validation.ValidateHabit(h); err != nil {
		respond(c, badRequest(err))
		return
	}

	if err := s.store.UpdateHabit(c.Request.Context(), h); err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) deleteHabit(c *gin.Context) {
	h, err := s.ownedHabit(c)
	if err != nil {
		respond(c, err)
		return
	}
	if err := s.store.DeleteHabit(c.Request.Context(), h.ID); err != nil {
		respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Shares

func (s *Server) listShares(c *gin.Context) {
	shares, err := s.store.GetAllShares(c.Request.Context())
	if err != nil {
		respond(c, err)
		return
	}
	if hid := c.Query("habitId"); hid != "" {
		shares = models.FilterShares(shares, hid)
	}
	c.JSON(http.StatusOK, shares)
}

func (s *Server) getShare(c *gin.Context) {
	sh, err := s.store.GetShare(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, sh)
}

func (s *Server) createShare(c *gin.Context) {
	var sh models.Share
	if err := c.ShouldBindJSON(&sh); err != nil {
		respond(c, badRequest(err))
		return
	}

	caller := identity(c)
	ctx := c.Request.Context()
	habit, err := s.store.GetHabit(ctx, sh.HabitID)
	if err != nil {
		respond(c, err)
		return
	}
	if habit.UserID != caller.UserID {
		respond(c, errNotOwner)
		return
	}

	sh.UserID = caller.UserID
	sh.HabitName = habit.Name
	sh.Upvotes = 0
	if sh.ID == "" {
		sh.ID = models.NewID()
	}
	if sh.UserName == "" {
		sh.UserName = caller.DisplayName
	}
	if sh.UserName == "" {
		sh.UserName = constants.AnonymousName
	}
	if sh.CreatedAt == "" {
		sh.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	if err := validation.ValidateShare(sh); err != nil {
		respond(c, badRequest(err))
		return
	}

	if err := s.store.AddShare(ctx, sh); err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, sh)
}

// updateShare is a full replace. The creator may change anything but the
// ownership fields. Anyone else may only raise the upvote count by one,
// which is what the legacy read-modify-write upvote sends.
func (s *Server) updateShare(c *gin.Context) {
	ctx := c.Request.Context()
	existing, err := s.store.GetShare(ctx, c.Param("id"))
	if err != nil {
		respond(c, err)
		return
	}

	var sh models.Share
	if err := c.ShouldBindJSON(&sh); err != nil {
		respond(c, badRequest(err))
		return
	}
	sh.ID = existing.ID

	if existing.UserID != identity(c).UserID {
		// a stale read may write back the current count, so equal is allowed
		cmp := sh
		cmp.Upvotes = existing.Upvotes
		if cmp != existing || sh.Upvotes < existing.Upvotes || sh.Upvotes > existing.Upvotes+1 {
			respond(c, errUpvoteOnly)
			return
		}
	}
	sh.UserID = existing.UserID
	sh.HabitID = existing.HabitID
	sh.CreatedAt = existing.CreatedAt

	if err := validation.ValidateShare(sh); err != nil {
		respond(c, badRequest(err))
		return
	}
	if err := s.store.UpdateShare(ctx, sh); err != nil {
		respond(c, err)
		return
	}
	if sh.Upvotes > existing.Upvotes {
		s.metrics.upvotes.WithLabelValues("legacy").Add(float64(sh.Upvotes - existing.Upvotes))
	}
	c.JSON(http.StatusOK, sh)
}

func (s *Server) upvoteShare(c *gin.Context) {
	sh, err := s.store.IncrementUpvotes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond(c, err)
		return
	}
	s.metrics.upvotes.WithLabelValues("atomic").Inc()
	c.JSON(http.StatusOK, sh)
}

func (s *Server) deleteShare(c *gin.Context) {
	ctx := c.Request.Context()
	sh, err := s.store.GetShare(ctx, c.Param("id"))
	if err != nil {
		respond(c, err)
		return
	}
	if sh.UserID != identity(c).UserID {
		respond(c, errNotOwner)
		return
	}
	if err := s.store.DeleteShare(ctx, sh.ID); err != nil {
		respond(c, err)
		return
	}
	logger.Debug("Share deleted", "share", sh.ID)
	c.Status(http.StatusNoContent)
}

// Upvote records

func (s *Server) listUpvotes(c *gin.Context) {
	ups, err := s.store.GetUpvotes(c.Request.Context(), c.Query("shareId"))
	if err != nil {
		respond(c, err)
		return
	}
	if ups == nil {
		ups = []models.Upvote{}
	}
	c.JSON(http.StatusOK, ups)
}

func (s *Server) createUpvote(c *gin.Context) {
	var u models.Upvote
	if err := bind(c, &u); err != nil {
		respond(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := s.store.GetShare(ctx, u.ShareID); err != nil {
		respond(c, err)
		return
	}
	u.UserID = identity(c).UserID
	if u.ID == "" {
		u.ID = models.NewID()
	}
	if err := s.store.AddUpvote(ctx, u); err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}
