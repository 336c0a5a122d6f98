package api

import (
	"net/http"
	"nutrivida/clinic-app/internal/domain"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID reads the authenticated user's ObjectID from the
// context set by AuthMiddleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Invalid user ID in token")
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathObjectID parses an ObjectID path parameter, aborting with 400 on
// malformed input.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// resolvePatientID returns the patient a request targets. Patients are
// pinned to their own ID regardless of the path; staff may address any
// patient through the path parameter.
func resolvePatientID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	callerID, ok := currentUserID(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user role from token")
		return primitive.NilObjectID, false
	}

	if role == domain.RolePatient {
		if raw := c.Param(param); raw != "" && raw != callerID.Hex() {
			abortWithError(c, http.StatusForbidden, "Patients can only access their own data")
			return primitive.NilObjectID, false
		}
		return callerID, true
	}
	return pathObjectID(c, param)
}

// parseHex converts a hex string from a request body into an ObjectID.
func parseHex(raw string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(raw)
}

// parseBodyDate parses an optional YYYY-MM-DD string from a request
// body, defaulting to today (UTC).
func parseBodyDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Now().UTC(), true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// queryDate parses an optional YYYY-MM-DD query parameter, defaulting
// to today (UTC).
func queryDate(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Now().UTC(), true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}
