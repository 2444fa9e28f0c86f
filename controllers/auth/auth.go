package authController

import (
	"log"
	"time"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	authValidator "lms/validators/auth"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSignup").(*authValidator.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Role:     models.RoleStudent,
		Password: string(hashedPassword),
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to signup user!", nil)
	}

	newUser.Password = ""
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	now := time.Now()
	user.LastLogin = &now
	if err := db.Save(&user).Error; err != nil {
		log.Printf("Error saving last login time: %v", err)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		log.Printf("Error generating JWT: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to login!", nil)
	}

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// LoginGoogle exchanges a verified Google ID token for a session token. The
// provider handshake happens on the client; this endpoint only verifies the
// resulting identity and issues our own JWT.
func LoginGoogle(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedGoogleLogin").(*authValidator.GoogleLoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(reqData.IDToken, []string{config.AppConfig.GoogleClientID}); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Google ID token!", nil)
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(reqData.IDToken)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to decode ID token!", nil)
	}

	db := database.Database.Db

	var user models.User
	err = db.Where("google_id = ? AND is_deleted = ?", claimSet.Sub, false).First(&user).Error
	if err != nil {
		// First Google login: link by email or create a new account.
		if err := db.Where("email = ? AND is_deleted = ?", claimSet.Email, false).First(&user).Error; err == nil {
			googleID := claimSet.Sub
			user.GoogleID = &googleID
			user.IsEmailVerified = true
			if err := db.Save(&user).Error; err != nil {
				log.Printf("Error linking Google account: %v", err)
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to login!", nil)
			}
		} else {
			googleID := claimSet.Sub
			hashed, herr := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), config.AppConfig.SaltRound)
			if herr != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to login!", nil)
			}
			user = models.User{
				Name:            claimSet.Name,
				Email:           claimSet.Email,
				Role:            models.RoleStudent,
				Password:        string(hashed), // unusable, Google-only account
				GoogleID:        &googleID,
				IsEmailVerified: true,
			}
			if err := db.Create(&user).Error; err != nil {
				log.Printf("Error creating Google user: %v", err)
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to login!", nil)
			}
		}
	}

	now := time.Now()
	user.LastLogin = &now
	db.Save(&user)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		log.Printf("Error generating JWT: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to login!", nil)
	}

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"token": token,
		"user":  user,
	})
}
