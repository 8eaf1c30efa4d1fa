package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// POST /posts/
func (a *app) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	caller, ok := userFromContext(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	up, err := formUpload(r, "thumbnail")
	if err != nil || up == nil {
		errorJSON(w, http.StatusUnprocessableEntity, "Please fill in all fields")
		return
	}
	defer up.Close()

	title := strings.TrimSpace(r.FormValue("title"))
	category := strings.TrimSpace(r.FormValue("category"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || category == "" || description == "" {
		errorJSON(w, http.StatusUnprocessableEntity, "Please fill in all fields")
		return
	}
	if !isValidCategory(category) {
		errorJSON(w, http.StatusUnprocessableEntity, category+" is not a valid category")
		return
	}
	if up.size > maxThumbnailSize {
		errorJSON(w, http.StatusUnprocessableEntity, "File size too large")
		return
	}

	name, err := a.store.save(up)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Post couldn't be created")
		return
	}

	post := Post{
		ID:          newID(),
		Title:       title,
		Category:    category,
		Description: description,
		Creator:     caller.ID,
		Thumbnail:   name,
	}
	if err := a.db.Create(&post).Error; err != nil {
		a.store.remove(name)
		errorJSON(w, http.StatusInternalServerError, "Post couldn't be created")
		return
	}

	// counter moves in the same statement that reads it, so concurrent
	// creates by one user cannot drift it
	if err := a.db.Model(&User{}).Where("id = ?", caller.ID).
		UpdateColumn("posts", gorm.Expr("posts + 1")).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "Post couldn't be created")
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// GET /posts/
func (a *app) handleGetPosts(w http.ResponseWriter, r *http.Request) {
	var posts []Post
	if err := a.db.Order("updated_at DESC").Find(&posts).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error fetching posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// GET /posts/{id}
func (a *app) handleGetPost(w http.ResponseWriter, r *http.Request) {
	var post Post
	err := a.db.First(&post, "id = ?", chi.URLParam(r, "id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "Post not found")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error fetching post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// GET /posts/categories/{category}
func (a *app) handleCategoryPosts(w http.ResponseWriter, r *http.Request) {
	var posts []Post
	err := a.db.Where("category = ?", chi.URLParam(r, "category")).
		Order("created_at DESC").Find(&posts).Error
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error fetching posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// GET /posts/users/{id}
func (a *app) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	var posts []Post
	err := a.db.Where("creator = ?", chi.URLParam(r, "id")).
		Order("created_at DESC").Find(&posts).Error
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error fetching posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// PATCH /posts/{id}
func (a *app) handleEditPost(w http.ResponseWriter, r *http.Request) {
	caller, ok := userFromContext(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	var post Post
	err := a.db.First(&post, "id = ?", chi.URLParam(r, "id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "Post not found")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error updating post")
		return
	}
	if post.Creator != caller.ID {
		errorJSON(w, http.StatusForbidden, "You may only edit your own posts")
		return
	}

	up, err := formUpload(r, "thumbnail")
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "Please fill in all fields")
		return
	}
	if up != nil {
		defer up.Close()
	}

	title := strings.TrimSpace(r.FormValue("title"))
	category := strings.TrimSpace(r.FormValue("category"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || category == "" || len(description) < 12 {
		errorJSON(w, http.StatusUnprocessableEntity, "Please fill in all fields")
		return
	}
	if !isValidCategory(category) {
		errorJSON(w, http.StatusUnprocessableEntity, category+" is not a valid category")
		return
	}

	if up != nil {
		if up.size > maxThumbnailSize {
			errorJSON(w, http.StatusUnprocessableEntity, "File size too large")
			return
		}
		name, err := a.store.save(up)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "Error updating post")
			return
		}
		a.store.remove(post.Thumbnail)
		post.Thumbnail = name
	}

	post.Title = title
	post.Category = category
	post.Description = description
	if err := a.db.Save(&post).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error updating post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// DELETE /posts/{id}
func (a *app) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	caller, ok := userFromContext(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	var post Post
	err := a.db.First(&post, "id = ?", chi.URLParam(r, "id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "Post not found")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error deleting post")
		return
	}
	if post.Creator != caller.ID {
		errorJSON(w, http.StatusForbidden, "You may only delete your own posts")
		return
	}

	if err := a.db.Delete(&post).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error deleting post")
		return
	}
	a.store.remove(post.Thumbnail)

	if err := a.db.Model(&User{}).Where("id = ? AND posts > 0", post.Creator).
		UpdateColumn("posts", gorm.Expr("posts - 1")).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error deleting post")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Post " + post.ID + " deleted successfully",
	})
}
