package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/handlers"
	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/utils/flash"
	"github.com/r56149203/EduSphere/utils/response"
)

const pdfField = "pdf_file"

// ResourceForm is what the add and edit templates display
type ResourceForm struct {
	Type        string
	Title       string
	Description string
	ClassID     uint
	SubjectID   uint
	ChapterID   uint
	ContentURL  string
	MindmapData string
	AddAnother  bool
	// CurrentFile is the stored PDF name of an edited pdf resource
	CurrentFile string
}

func formFromRequest(c *fiber.Ctx) ResourceForm {
	return ResourceForm{
		Type:        c.FormValue("type"),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		ClassID:     handlers.FormID(c, "class_id"),
		SubjectID:   handlers.FormID(c, "subject_id"),
		ChapterID:   handlers.FormID(c, "chapter_id"),
		ContentURL:  c.FormValue("content_url"),
		MindmapData: c.FormValue("mindmap_data"),
		AddAnother:  c.FormValue("add_another") != "",
	}
}

func formFromResource(r *model.Resource) ResourceForm {
	form := ResourceForm{
		Type:        string(r.Type),
		Title:       r.Title,
		Description: r.Description,
		ClassID:     r.ClassID,
		SubjectID:   r.SubjectID,
		ChapterID:   r.ChapterID,
	}
	switch content := r.Content().(type) {
	case model.URLContent:
		form.ContentURL = content.URL
	case model.MindmapContent:
		form.MindmapData = string(content.Data)
	case model.FileContent:
		form.CurrentFile, _ = services.StoredName(content.Path)
	}
	return form
}

func (f ResourceForm) input(file *services.FileUpload) services.ResourceInput {
	return services.ResourceInput{
		Type:        f.Type,
		Title:       f.Title,
		Description: f.Description,
		ClassID:     f.ClassID,
		SubjectID:   f.SubjectID,
		ChapterID:   f.ChapterID,
		ContentURL:  f.ContentURL,
		MindmapData: f.MindmapData,
		File:        file,
	}
}

// uploadedFile returns the PDF part of the form, nil when none was sent.
// A multipart body that fails to parse is returned as a failed upload.
func uploadedFile(c *fiber.Ctx) *services.FileUpload {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return services.NewFileUpload(nil, err)
	}
	files := form.File[pdfField]
	if len(files) == 0 {
		return nil
	}
	return services.NewFileUpload(files[0], nil)
}

// AddResourceForm shows an empty resource form
// GET /admin/resource/add
func (h *AdminHandler) AddResourceForm(c *fiber.Ctx) error {
	return h.renderResourceForm(c, fiber.StatusOK, "add", 0, ResourceForm{}, nil)
}

// AddResource creates a resource. With add_another the hierarchy and type are
// kept for the next entry.
// POST /admin/resource/add
func (h *AdminHandler) AddResource(c *fiber.Ctx) error {
	form := formFromRequest(c)

	var file *services.FileUpload
	if form.Type == string(model.ResourceTypePDF) {
		file = uploadedFile(c)
	}

	if _, err := h.resources.Create(c.UserContext(), handlers.Actor(c), form.input(file)); err != nil {
		if handlers.IsUserError(err) {
			return h.renderResourceForm(c, fiber.StatusUnprocessableEntity, "add", 0, form, services.Messages(err))
		}
		return handlers.ServiceError(c, err)
	}

	flash.Success(c, "Resource added successfully!")
	if !form.AddAnother {
		return c.Redirect("/admin/resource/add")
	}
	return c.Redirect(fmt.Sprintf("/admin/resource/add?class_id=%d&subject_id=%d&chapter_id=%d&type=%s",
		form.ClassID, form.SubjectID, form.ChapterID, form.Type))
}

// EditResourceForm shows the form pre-filled with resource id
// GET /admin/resource/edit?id=N
func (h *AdminHandler) EditResourceForm(c *fiber.Ctx) error {
	id := handlers.QueryID(c, "id")
	resource, err := h.resources.GetByID(c.UserContext(), id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return h.renderResourceForm(c, fiber.StatusOK, "edit", id, formFromResource(resource), nil)
}

// EditResource updates resource id
// POST /admin/resource/edit?id=N
func (h *AdminHandler) EditResource(c *fiber.Ctx) error {
	id := handlers.QueryID(c, "id")
	form := formFromRequest(c)

	var file *services.FileUpload
	if form.Type == string(model.ResourceTypePDF) {
		file = uploadedFile(c)
	}

	if _, err := h.resources.Update(c.UserContext(), handlers.Actor(c), id, form.input(file)); err != nil {
		if handlers.IsUserError(err) {
			if current, getErr := h.resources.GetByID(c.UserContext(), id); getErr == nil {
				form.CurrentFile = formFromResource(current).CurrentFile
			}
			return h.renderResourceForm(c, fiber.StatusUnprocessableEntity, "edit", id, form, services.Messages(err))
		}
		return handlers.ServiceError(c, err)
	}

	flash.Success(c, "Resource updated successfully!")
	return c.Redirect("/admin/content")
}

// DeleteResource removes resource id and its file. An unknown id redirects
// without a message.
// GET /admin/resource/delete?id=N
func (h *AdminHandler) DeleteResource(c *fiber.Ctx) error {
	err := h.resources.Delete(c.UserContext(), handlers.Actor(c), handlers.QueryID(c, "id"))
	switch {
	case err == nil:
		flash.Success(c, "Resource deleted successfully!")
	case errors.Is(err, services.ErrNotFound):
	default:
		handlers.LogError(c, err)
		flash.Error(c, services.ErrSystem.Error())
	}
	return c.Redirect("/admin/content")
}

// ListContent shows one page of resources, newest first
// GET /admin/content?page=N
func (h *AdminHandler) ListContent(c *fiber.Ctx) error {
	page, err := h.resources.List(c.UserContext(), c.QueryInt("page", 1), h.resources.PageSize())
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return handlers.Render(c, fiber.StatusOK, "admin/content", fiber.Map{
		"Title":      "Manage Content",
		"Active":     "content",
		"Resources":  page.Items,
		"Pagination": response.CalculatePagination(page.Page, page.PageSize, page.Total),
	})
}

func (h *AdminHandler) renderResourceForm(c *fiber.Ctx, status int, mode string, id uint, form ResourceForm, errs []string) error {
	if mode == "add" && status == fiber.StatusOK {
		// Hierarchy and type carried over by "add another"
		form.ClassID = handlers.QueryID(c, "class_id")
		form.SubjectID = handlers.QueryID(c, "subject_id")
		form.ChapterID = handlers.QueryID(c, "chapter_id")
		form.Type = c.Query("type")
		form.AddAnother = form.ClassID != 0
	}

	classes, subjects, chapters, err := h.selectOptions(c.UserContext(), form)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	title, action, active := "Add Resource", "/admin/resource/add", "add"
	if mode == "edit" {
		title, action, active = "Edit Resource", fmt.Sprintf("/admin/resource/edit?id=%d", id), "content"
	}

	return handlers.Render(c, status, "admin/resource_form", fiber.Map{
		"Title":       title,
		"Active":      active,
		"Mode":        mode,
		"Action":      action,
		"Form":        form,
		"Types":       model.ResourceTypes,
		"Classes":     classes,
		"Subjects":    subjects,
		"Chapters":    chapters,
		"MaxUploadMB": h.maxUploadMB,
		"Errors":      errs,
	})
}

// selectOptions loads the select contents for the form's current hierarchy
func (h *AdminHandler) selectOptions(ctx context.Context, form ResourceForm) ([]model.Class, []model.Subject, []model.Chapter, error) {
	classes, err := h.taxonomy.ListClasses(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	subjects := []model.Subject{}
	if form.ClassID != 0 {
		if subjects, err = h.taxonomy.ListSubjects(ctx, form.ClassID); err != nil {
			return nil, nil, nil, err
		}
	}
	chapters := []model.Chapter{}
	if form.SubjectID != 0 {
		if chapters, err = h.taxonomy.ListChapters(ctx, form.SubjectID); err != nil {
			return nil, nil, nil, err
		}
	}
	return classes, subjects, chapters, nil
}
