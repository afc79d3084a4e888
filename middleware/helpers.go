package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Dosada05/club-engine/models"
	"github.com/golang-jwt/jwt/v4"
)

// Имена JWT claims, согласованные с внешним сервисом аутентификации.
const (
	jwtClaimStaffID = "staff_id"
	jwtClaimRole    = "role"
)

func GetStaffIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(staffContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("staff claims not found in context or invalid type")
	}

	idClaim, ok := claims[jwtClaimStaffID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimStaffID)
	}

	idFloat, ok := idClaim.(float64)
	if !ok {
		// Некоторые эмитенты кладут числовые claims строками.
		if idStr, okStr := idClaim.(string); okStr {
			id, err := strconv.Atoi(idStr)
			if err == nil && id > 0 {
				return id, nil
			}
		}
		return 0, fmt.Errorf("invalid type for '%s' claim: expected float64 or string, got %T", jwtClaimStaffID, idClaim)
	}

	id := int(idFloat)
	if id <= 0 {
		return 0, fmt.Errorf("invalid staff ID value in '%s' claim: %d", jwtClaimStaffID, id)
	}
	return id, nil
}

func GetStaffRoleFromContext(ctx context.Context) (models.StaffRole, error) {
	claims, ok := ctx.Value(staffContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("staff claims not found in context or invalid type")
	}

	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}
	roleStr, ok := roleClaim.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRole, roleClaim)
	}

	role := models.StaffRole(roleStr)
	switch role {
	case models.RoleAdmin, models.RoleFloorman, models.RoleCashier:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
}
