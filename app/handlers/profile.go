package handlers

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/s3/v2"
	"gorm.io/gorm"

	"connectcargo/app/database"
	"connectcargo/pkg/utils"
)

var allowedPictureExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// UpdateProfilePicture stores the uploaded image in object storage and
// records the key on the user.
func UpdateProfilePicture(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	storage := c.Locals("storage").(*s3.Storage)
	user := c.Locals("user").(database.User)

	fileHeader, err := c.FormFile("profile_picture")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No file selected"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedPictureExtensions[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "File type not allowed. Use PNG, JPG, JPEG or GIF"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	key := fmt.Sprintf("profiles/user_%s_%s%s", user.ID, utils.GenerateRandomString(12), ext)
	if err := storage.Set(key, contents, 0); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to store file"})
	}

	if err := db.Model(&user).Update("profile_picture", key).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(fiber.Map{"profile_picture": key})
}

func GetProfilePicture(c *fiber.Ctx) error {
	storage := c.Locals("storage").(*s3.Storage)
	user := c.Locals("user").(database.User)

	if user.ProfilePicture == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	contents, err := storage.Get(*user.ProfilePicture)
	if err != nil || contents == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	contentType := mime.TypeByExtension(filepath.Ext(*user.ProfilePicture))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(contents)
}
