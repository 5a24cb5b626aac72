package api

import (
	"net/http"

	"github.com/Aidin1998/usersapi/common/apiutil"
	"github.com/Aidin1998/usersapi/common/errors"
	"github.com/Aidin1998/usersapi/pkg/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgMissingFields = "Please provide name and bio for the user."
	msgUserNotFound  = "The user with the specified ID does not exist."

	msgListFailed   = "The users information could not be retrieved."
	msgGetFailed    = "The user information could not be retrieved."
	msgCreateFailed = "There was an error while saving the user to the database"
	msgUpdateFailed = "The user information could not be modified."
	msgRemoveFailed = "The user could not be removed"
)

// listUsers returns every user
//
//	@Summary	List users
//	@Tags		Users
//	@Produce	json
//	@Success	200	{array}		models.User
//	@Failure	500	{object}	apiutil.ErrorResponse
//	@Router		/api/users [get]
func (s *Server) listUsers(c *gin.Context) {
	list, err := s.users.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err, msgListFailed)
		return
	}
	c.JSON(http.StatusOK, list)
}

// getUser returns a single user
//
//	@Summary	Get a user
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	models.User
//	@Failure	404	{object}	apiutil.MessageResponse
//	@Failure	500	{object}	apiutil.ErrorResponse
//	@Router		/api/users/{id} [get]
func (s *Server) getUser(c *gin.Context) {
	user, err := s.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err, msgGetFailed)
		return
	}
	c.JSON(http.StatusOK, user)
}

// createUser stores a new user
//
//	@Summary	Create a user
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		user	body		models.UserInput	true	"User"
//	@Success	201		{object}	models.User
//	@Failure	400		{object}	apiutil.ValidationResponse
//	@Failure	500		{object}	apiutil.ErrorResponse
//	@Router		/api/users [post]
func (s *Server) createUser(c *gin.Context) {
	var input models.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		s.logger.Debug("Malformed user body", zap.Error(err))
		apiutil.WriteValidationError(c, http.StatusBadRequest, msgMissingFields)
		return
	}

	user, err := s.users.Create(c.Request.Context(), input)
	if err != nil {
		s.writeError(c, err, msgCreateFailed)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// updateUser replaces name and bio of an existing user
//
//	@Summary	Update a user
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"User ID"
//	@Param		user	body		models.UserInput	true	"User"
//	@Success	200		{object}	models.User
//	@Failure	400		{object}	apiutil.ValidationResponse
//	@Failure	404		{object}	apiutil.MessageResponse
//	@Failure	500		{object}	apiutil.ErrorResponse
//	@Router		/api/users/{id} [put]
func (s *Server) updateUser(c *gin.Context) {
	var input models.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		s.logger.Debug("Malformed user body", zap.Error(err))
		apiutil.WriteValidationError(c, http.StatusBadRequest, msgMissingFields)
		return
	}

	user, err := s.users.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		s.writeError(c, err, msgUpdateFailed)
		return
	}
	c.JSON(http.StatusOK, user)
}

// deleteUser removes a user
//
//	@Summary	Delete a user
//	@Tags		Users
//	@Param		id	path	string	true	"User ID"
//	@Success	204
//	@Failure	404	{object}	apiutil.MessageResponse
//	@Failure	500	{object}	apiutil.ErrorResponse
//	@Router		/api/users/{id} [delete]
func (s *Server) deleteUser(c *gin.Context) {
	if err := s.users.Remove(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err, msgRemoveFailed)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps a service error onto the fixed response of the route.
// Causes of server side failures are logged and never sent to the client.
func (s *Server) writeError(c *gin.Context, err error, internalMessage string) {
	switch {
	case errors.Is(err, errors.Invalid):
		apiutil.WriteValidationError(c, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, errors.NotFound):
		apiutil.WriteMessage(c, http.StatusNotFound, msgUserNotFound)
	default:
		s.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("cause_status", errors.StatusOf(err)),
			zap.Error(err))
		apiutil.WriteError(c, http.StatusInternalServerError, internalMessage)
	}
}
