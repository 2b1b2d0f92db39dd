package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/coffee-order/middlewares"
	"github.com/yeremiapane/coffee-order/models"
	"github.com/yeremiapane/coffee-order/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errNameRequired = errors.New("first and last name must not be blank")

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Signup creates a customer account with the contact details staff need to
// deliver an order.
func (uc *UserController) Signup(c *gin.Context) {
	var req struct {
		FirstName  string `json:"first_name" form:"first_name" binding:"required,max=30"`
		LastName   string `json:"last_name" form:"last_name" binding:"required,max=30"`
		RoomNumber string `json:"room_number" form:"room_number" binding:"max=30"`
		Tel        string `json:"tel" form:"tel" binding:"max=30"`
		Email      string `json:"email" form:"email" binding:"required,email"`
		Password   string `json:"password" form:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		utils.RespondError(c, http.StatusBadRequest, errNameRequired)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := uc.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if count > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("email is already registered"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		RoomNumber: strings.TrimSpace(req.RoomNumber),
		Tel:        strings.TrimSpace(req.Tel),
		Email:      email,
		Password:   string(hashed),
		Role:       models.RoleCustomer,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Infof("New user signed up: %s", user.Email)

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login -> return JWT and set it as a cookie
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" form:"email" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := uc.DB.Where("email = ?", email).Take(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.TokenCookie, token, int(utils.TokenTTL.Seconds()), "/", "", c.Request.TLS != nil, true)

	utils.InfoLogger.Infof("Login successful for user: %s", user.Email)

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_role": user.Role,
	})
}

// Logout revokes the current token and clears the cookie.
func (uc *UserController) Logout(c *gin.Context) {
	if token := c.GetString("token"); token != "" {
		utils.BlacklistToken(token)
	}
	c.SetCookie(middlewares.TokenCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", newProfileView(user))
}

// UpdateProfile edits the contact fields; absent fields stay as they are.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req struct {
		FirstName  *string `json:"first_name" binding:"omitempty,min=1,max=30"`
		LastName   *string `json:"last_name" binding:"omitempty,min=1,max=30"`
		RoomNumber *string `json:"room_number" binding:"omitempty,max=30"`
		Tel        *string `json:"tel" binding:"omitempty,max=30"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	updates := map[string]interface{}{}
	for column, value := range map[string]*string{"first_name": req.FirstName, "last_name": req.LastName} {
		if value == nil {
			continue
		}
		name := strings.TrimSpace(*value)
		if name == "" {
			utils.RespondError(c, http.StatusBadRequest, errNameRequired)
			return
		}
		updates[column] = name
	}
	if req.RoomNumber != nil {
		updates["room_number"] = strings.TrimSpace(*req.RoomNumber)
	}
	if req.Tel != nil {
		updates["tel"] = strings.TrimSpace(*req.Tel)
	}
	if len(updates) > 0 {
		if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if err := uc.DB.First(&user, userID).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Profile updated", newProfileView(user))
}
