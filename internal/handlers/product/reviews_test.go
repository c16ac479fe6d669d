package product

import (
	"testing"

	"souq_back_end/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanDeleteReview(t *testing.T) {
	tests := []struct {
		name        string
		role        string
		requesterID string
		ownerID     string
		want        bool
	}{
		{"auteur de l'avis", models.RoleUser, "user-1", "user-1", true},
		{"autre utilisateur", models.RoleUser, "user-2", "user-1", false},
		{"admin sur l'avis d'un autre", models.RoleAdmin, "admin-1", "user-1", true},
		{"manager sur l'avis d'un autre", models.RoleManager, "manager-1", "user-1", true},
		{"identifiant vide", models.RoleUser, "", "", false},
		{"rôle inconnu", "superuser", "user-2", "user-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canDeleteReview(tt.role, tt.requesterID, tt.ownerID))
		})
	}
}
