package handlers

import (
	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/botiapp/watertruck-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterInput struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=customer driver"`
}

type LoginInput struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.Role == "" {
			input.Role = models.RoleCustomer
		}

		var existing models.User
		if result := db.Where("phone = ?", input.Phone).First(&existing); result.Error == nil {
			c.JSON(400, gin.H{"error": "Phone number already registered"})
			return
		}

		user := models.User{
			FullName: input.FullName,
			Phone:    input.Phone,
			Role:     input.Role,
			IsActive: true,
		}
		if err := user.SetPassword(input.Password); err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		if result := db.Create(&user); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create user: " + result.Error.Error()})
			return
		}

		// Drivers start with a default profile they can edit later
		if user.Role == models.RoleDriver {
			profile := models.DriverProfile{
				UserID:    user.ID,
				TruckType: "Standard",
				Capacity:  10000,
				Price:     50.0,
			}
			if result := db.Create(&profile); result.Error != nil {
				c.JSON(500, gin.H{"error": "Failed to create driver profile"})
				return
			}
		}

		c.JSON(201, gin.H{
			"message": "User created successfully",
			"user": gin.H{
				"id":       user.ID,
				"fullName": user.FullName,
				"phone":    user.Phone,
				"role":     user.Role,
				"isActive": user.IsActive,
			},
		})
	}
}

func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.Where("phone = ?", input.Phone).First(&user); result.Error != nil {
			c.JSON(401, gin.H{"error": "Incorrect phone or password"})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Incorrect phone or password"})
			return
		}

		if !user.IsActive {
			c.JSON(403, gin.H{"error": "Account is deactivated"})
			return
		}

		token, err := utils.GenerateToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"token":    token,
			"role":     user.Role,
			"userId":   user.ID,
			"fullName": user.FullName,
		})
	}
}
