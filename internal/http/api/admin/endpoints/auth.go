package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/db"
	"github.com/signageflow/signageflow/internal/http/api"
	"github.com/signageflow/signageflow/internal/http/api/admin/packets"
	"github.com/signageflow/signageflow/internal/http/middleware"
	"github.com/signageflow/signageflow/internal/model"
)

type AccountManager struct {
	jwtSecret string
	store     db.Store
}

// AuthPublicModule mounts signup/login, which issue tokens and therefore
// sit outside the JWT middleware.
func AuthPublicModule(secret string, store db.Store) api.Module {
	ctl := &AccountManager{jwtSecret: secret, store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PublicPOST("/auth/signup", ctl.userSignup)
		c.PublicPOST("/auth/login", ctl.userLogin)
	})
}

// AuthSessionModule mounts the profile endpoints that require a session.
func AuthSessionModule(secret string, store db.Store) api.Module {
	ctl := &AccountManager{jwtSecret: secret, store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/auth/current_profile", ctl.getCurrentProfile)
		c.PUT("/auth/current_profile", ctl.updateCurrentProfile)
	})
}

// POST /api/admin/auth/signup
func (a *AccountManager) userSignup(ctx *gin.Context) (any, *api.APIError) {
	var request packets.SignupRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if existing, _ := a.store.GetUserByEmail(ctx.Request.Context(), request.Email); existing != nil {
		log.Info().Str("email", request.Email).Msg("signup with already registered email")
		return nil, &api.APIError{Code: http.StatusConflict, Message: "email already registered"}
	}

	hashed, err := middleware.HashPassword(request.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "something went wrong, please try again"}
	}

	userID, err := a.store.CreateUser(ctx.Request.Context(), request.Email, hashed, request.Name)
	if err != nil {
		log.Error().Err(err).Str("email", request.Email).Msg("could not create user")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "something went wrong, please try again"}
	}

	token, err := middleware.GenerateJWT(userID, a.jwtSecret)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("could not generate JWT")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "something went wrong, please try again"}
	}

	return gin.H{"token": token}, nil
}

// POST /api/admin/auth/login
func (a *AccountManager) userLogin(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	user, err := a.store.GetUserByEmail(ctx.Request.Context(), request.Email)
	if err != nil || !middleware.CheckPassword(user.HashedPassword, request.Password) {
		log.Info().Str("email", request.Email).Msg("login failed")
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid email or password"}
	}

	token, err := middleware.GenerateJWT(user.ID, a.jwtSecret)
	if err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("could not generate JWT")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "something went wrong, please try again"}
	}

	return gin.H{"token": token}, nil
}

// GET /api/admin/auth/current_profile
func (a *AccountManager) getCurrentProfile(_ *gin.Context, user *model.User) (any, *api.APIError) {
	return profileResponse(user), nil
}

// PUT /api/admin/auth/current_profile
func (a *AccountManager) updateCurrentProfile(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.UpdateCurrentProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if request.Email != user.Email {
		if other, _ := a.store.GetUserByEmail(ctx.Request.Context(), request.Email); other != nil {
			return nil, &api.APIError{Code: http.StatusConflict, Message: "email already registered"}
		}
	}

	if err := a.store.UpdateUserProfile(ctx.Request.Context(), user.ID, request.Email, request.Name); err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("failed to update profile")
		return nil, api.ErrorFor(err, "could not update profile")
	}

	updated, err := a.store.GetUserByID(ctx.Request.Context(), user.ID)
	if err != nil {
		return nil, api.ErrorFor(err, "could not load updated profile")
	}
	return profileResponse(updated), nil
}

func profileResponse(u *model.User) packets.ProfileResponse {
	return packets.ProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}
