package user

import (
	"log"
	"net/http"
	"strings"
	"time"

	"souq_back_end/internal/cache"
	"souq_back_end/internal/database"
	"souq_back_end/internal/models"
	"souq_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// ================== AUTH LOCALE ==================

func CreateUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Email déjà pris ?
	var existingID gocql.UUID
	if err := session.Query(database.QueryUserByEmail, email).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte existe déjà avec cet email"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	userID := gocql.TimeUUID()
	now := time.Now()

	if err := session.Query(`INSERT INTO users (user_id, name, email, password, role, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, input.Name, email, hash, models.RoleUser, true, now).Exec(); err != nil {
		log.Println("❌ Erreur création utilisateur:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du compte"})
		return
	}

	// Table de lookup pour le login et la résolution webhook
	if err := session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?)`,
		email, userID).Exec(); err != nil {
		log.Println("❌ Erreur index email:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du compte"})
		return
	}

	user := models.User{
		ID:        userID.String(),
		Name:      input.Name,
		Email:     email,
		Role:      models.RoleUser,
		Active:    true,
		CreatedAt: now,
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Println("✅ Nouveau compte créé:", email)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Compte créé avec succès",
		"token":   token,
		"user":    user,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var userID gocql.UUID
	if err := session.Query(database.QueryUserByEmail, email).Scan(&userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	var user models.User
	var id gocql.UUID
	err = session.Query(database.QueryUserByID, userID).Scan(
		&id, &user.Name, &user.Email, &user.Password, &user.Role, &user.Active, &user.CreatedAt)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}
	user.ID = id.String()

	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "Compte désactivé"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetMe renvoie le profil de l'utilisateur connecté (via cache)
func GetMe(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, user)
}
