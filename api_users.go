package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

/* ---------- DTOs ---------- */

type registerReq struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type editUserReq struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

type publicUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type loginResp struct {
	Token string     `json:"token"`
	User  publicUser `json:"user"`
}

/* ---------- Handlers ---------- */

// POST /users/register
func (a *app) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerReq
	if isJSONRequest(r) {
		if err := decodeJSON(r, &in); err != nil {
			errorJSON(w, http.StatusUnprocessableEntity, "invalid json")
			return
		}
	} else {
		_ = r.ParseForm()
		in = registerReq{
			Name:      r.PostFormValue("name"),
			Email:     r.PostFormValue("email"),
			Password:  r.PostFormValue("password"),
			Password2: r.PostFormValue("password2"),
		}
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Password2 == "" {
		errorJSON(w, http.StatusUnprocessableEntity, "Please fill in all fields")
		return
	}

	var count int64
	if err := a.db.Model(&User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "Registration failed, please try again")
		return
	}
	if count > 0 {
		errorJSON(w, http.StatusUnprocessableEntity, "Email already exists")
		return
	}

	if len(strings.TrimSpace(in.Password)) < 6 {
		errorJSON(w, http.StatusUnprocessableEntity, "Password must be at least 6 characters")
		return
	}
	if in.Password != in.Password2 {
		errorJSON(w, http.StatusUnprocessableEntity, "Passwords do not match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Registration failed, please try again")
		return
	}
	u := User{
		ID:       newID(),
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
	}
	if err := a.db.Create(&u).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "Registration failed, please try again")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "New user " + u.Email + " registered successfully",
	})
}

// POST /users/login
func (a *app) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginReq
	if isJSONRequest(r) {
		if err := decodeJSON(r, &in); err != nil {
			errorJSON(w, http.StatusUnprocessableEntity, "invalid json")
			return
		}
	} else {
		_ = r.ParseForm()
		in = loginReq{
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}
	}
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		errorJSON(w, http.StatusUnprocessableEntity, "Please fill in all fields")
		return
	}

	// Same response for unknown email and wrong password; don't leak which.
	var u User
	err := a.db.Where("email = ?", in.Email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusUnauthorized, "Invalid credentials")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Login failed, please try again")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) != nil {
		errorJSON(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tok, err := a.tokens.sign(u.ID, u.Name)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Login failed, please try again")
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: tok, User: publicUser{ID: u.ID, Name: u.Name}})
}

// GET /users/{id}
func (a *app) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isValidID(id) {
		errorJSON(w, http.StatusUnprocessableEntity, "Invalid user ID")
		return
	}
	var u User
	err := a.db.First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error fetching user profile")
		return
	}
	writeJSON(w, http.StatusOK, toDTO(u))
}

// POST /users/change-avatar
func (a *app) handleChangeAvatar(w http.ResponseWriter, r *http.Request) {
	caller, ok := userFromContext(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	up, err := formUpload(r, "avatar")
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "Please choose an image")
		return
	}
	if up == nil {
		errorJSON(w, http.StatusUnprocessableEntity, "Please choose an image")
		return
	}
	defer up.Close()

	if up.size > maxAvatarSize {
		errorJSON(w, http.StatusUnprocessableEntity, "Image size too large")
		return
	}

	var u User
	if err := a.db.First(&u, "id = ?", caller.ID).Error; err != nil {
		errorJSON(w, http.StatusNotFound, "User not found")
		return
	}

	// write the replacement first; the superseded file goes last so a
	// failed save never leaves the record pointing at nothing
	name, err := a.store.save(up)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error updating avatar")
		return
	}
	a.store.remove(u.Avatar)

	// column-scoped update so a concurrent counter bump is never clobbered
	if err := a.db.Model(&User{}).Where("id = ?", u.ID).
		Update("avatar", name).Error; err != nil {
		a.store.remove(name)
		errorJSON(w, http.StatusInternalServerError, "Error updating avatar")
		return
	}

	if err := a.db.First(&u, "id = ?", u.ID).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error updating avatar")
		return
	}
	writeJSON(w, http.StatusOK, toDTO(u))
}

// PATCH /users/edit-user
func (a *app) handleEditUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := userFromContext(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	var in editUserReq
	if isJSONRequest(r) {
		if err := decodeJSON(r, &in); err != nil {
			errorJSON(w, http.StatusUnprocessableEntity, "invalid json")
			return
		}
	} else {
		_ = r.ParseForm()
		in = editUserReq{
			Name:               r.PostFormValue("name"),
			Email:              r.PostFormValue("email"),
			CurrentPassword:    r.PostFormValue("currentPassword"),
			NewPassword:        r.PostFormValue("newPassword"),
			ConfirmNewPassword: r.PostFormValue("confirmNewPassword"),
		}
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" || in.Email == "" || in.CurrentPassword == "" || in.NewPassword == "" {
		errorJSON(w, http.StatusUnprocessableEntity, "Please fill in all fields")
		return
	}

	var u User
	if err := a.db.First(&u, "id = ?", caller.ID).Error; err != nil {
		errorJSON(w, http.StatusNotFound, "User not found")
		return
	}

	// the new email may not belong to a different user
	var other User
	err := a.db.Where("email = ?", in.Email).First(&other).Error
	if err == nil && other.ID != caller.ID {
		errorJSON(w, http.StatusUnprocessableEntity, "Email already exists")
		return
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusInternalServerError, "Error updating user details")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.CurrentPassword)) != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "Invalid current password")
		return
	}
	if in.NewPassword != in.ConfirmNewPassword {
		errorJSON(w, http.StatusUnprocessableEntity, "New passwords do not match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error updating user details")
		return
	}

	if err := a.db.Model(&User{}).Where("id = ?", u.ID).
		Updates(map[string]any{"name": in.Name, "email": in.Email, "password": string(hash)}).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error updating user details")
		return
	}

	// re-read so the response carries the stored timestamps
	if err := a.db.First(&u, "id = ?", u.ID).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error updating user details")
		return
	}
	writeJSON(w, http.StatusOK, toDTO(u))
}

// GET /users/
func (a *app) handleGetAuthors(w http.ResponseWriter, r *http.Request) {
	var users []User
	if err := a.db.Find(&users).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error fetching authors")
		return
	}
	out := make([]userDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toDTO(u))
	}
	writeJSON(w, http.StatusOK, out)
}
