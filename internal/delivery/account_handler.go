package delivery

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SessionView struct {
	LoggedIn bool                    `json:"loggedIn"`
	IsAdmin  bool                    `json:"isAdmin"`
	User     *domain.ProfileSnapshot `json:"user,omitempty"`
}

type AccountHandler struct {
	useCase usecase.AccountUseCase
	session usecase.SessionUseCase
	log     *logrus.Logger
}

func NewAccountHandler(uc usecase.AccountUseCase, session usecase.SessionUseCase, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{
		useCase: uc,
		session: session,
		log:     logger,
	}
}

func (h *AccountHandler) RegisterRoutes(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.POST("/logout", h.Logout)
	}
	router.GET("/session", h.GetSession)
	router.POST("/contact", h.Contact)

	profile := router.Group("/profile", middleware.RequireSession(h.session, h.log))
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.POST("/addresses", h.AddAddress)
		profile.PUT("/addresses/:id", h.EditAddress)
		profile.DELETE("/addresses/:id", h.DeleteAddress)
	}
}

func (h *AccountHandler) sessionView(c *gin.Context) SessionView {
	s := h.session.Current(c.Request.Context())
	return SessionView{
		LoggedIn: s.Active(),
		IsAdmin:  s.User.IsAdmin(),
		User:     s.User,
	}
}

func (h *AccountHandler) Login(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if _, err := h.useCase.Login(c.Request.Context(), creds); err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Login successful", h.sessionView(c))
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req usecase.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if _, err := h.useCase.Register(c.Request.Context(), req); err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Registration successful", h.sessionView(c))
}

func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.useCase.Logout(c.Request.Context()); err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Logged out", h.sessionView(c))
}

func (h *AccountHandler) GetSession(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Session retrieved successfully", h.sessionView(c))
}

func (h *AccountHandler) GetProfile(c *gin.Context) {
	profile, err := h.useCase.Profile(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var update domain.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	profile, err := h.useCase.UpdateProfile(c.Request.Context(), update)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile updated successfully", profile)
}

func (h *AccountHandler) bindAddress(c *gin.Context) (domain.AddressInput, bool) {
	var input domain.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return input, false
	}
	return input, true
}

func (h *AccountHandler) AddAddress(c *gin.Context) {
	input, ok := h.bindAddress(c)
	if !ok {
		return
	}
	addresses, err := h.useCase.AddAddress(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Address added", addresses)
}

func (h *AccountHandler) EditAddress(c *gin.Context) {
	input, ok := h.bindAddress(c)
	if !ok {
		return
	}
	addresses, err := h.useCase.EditAddress(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Address updated", addresses)
}

func (h *AccountHandler) DeleteAddress(c *gin.Context) {
	addresses, err := h.useCase.DeleteAddress(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Address deleted", addresses)
}

func (h *AccountHandler) Contact(c *gin.Context) {
	var msg domain.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.useCase.SubmitContact(c.Request.Context(), msg); err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Message sent successfully", nil)
}
