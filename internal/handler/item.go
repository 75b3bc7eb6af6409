package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/andikasp/desa-wisata-api/internal/asset"
	"github.com/andikasp/desa-wisata-api/internal/model"
	"github.com/andikasp/desa-wisata-api/internal/queue"
	"github.com/andikasp/desa-wisata-api/internal/repository"
)

// imagesField is the multipart field name uploads arrive under.
const imagesField = "images"

// ItemStore is the generic record store surface the content endpoints need.
// The concrete implementation is repository.ItemRepo; tests substitute an
// in-memory fake.
type ItemStore interface {
	GetAll(ctx context.Context, rt model.ResourceType) ([]map[string]any, error)
	GetByID(ctx context.Context, rt model.ResourceType, id uint64) (map[string]any, error)
	Create(ctx context.Context, rt model.ResourceType, f model.ItemFields) (uint64, error)
	Update(ctx context.Context, rt model.ResourceType, id uint64, f model.ItemFields) error
	Delete(ctx context.Context, rt model.ResourceType, id uint64) error
}

// EventPublisher pushes content-change events to the broker.  Publishing is
// best effort; handler paths ignore its error.
type EventPublisher interface {
	PublishContentChanged(ctx context.Context, ev queue.ContentEvent) error
}

// ItemHandler is the orchestration layer binding the record store and the
// image asset store into the /api/data CRUD surface.
type ItemHandler struct {
	Items  ItemStore
	Assets *asset.Store
	Events EventPublisher // may be nil when no broker is configured
}

func NewItemHandler(items ItemStore, assets *asset.Store, events EventPublisher) *ItemHandler {
	if items == nil || assets == nil {
		panic("nil dependency passed to NewItemHandler")
	}
	return &ItemHandler{Items: items, Assets: assets, Events: events}
}

type itemReq struct {
	Name        string `json:"name" form:"name"`
	Category    string `json:"category" form:"category"`
	Description string `json:"description" form:"description"`
	Price       string `json:"price" form:"price"`
}

// resolveType maps the :type path parameter through the registry.  Every
// endpoint calls this before touching the store or the filesystem.
func resolveType(c echo.Context) (model.ResourceType, bool) {
	return model.ResolveType(c.Param("type"))
}

// GetAll handles GET /api/data/:type.
func (h *ItemHandler) GetAll(c echo.Context) error {
	rt, ok := resolveType(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid type"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Items.GetAll(ctx, rt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not load items"})
	}
	return c.JSON(http.StatusOK, items)
}

// GetByID handles GET /api/data/:type/:id.
func (h *ItemHandler) GetByID(c echo.Context) error {
	rt, ok := resolveType(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid type"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	item, err := h.Items.GetByID(ctx, rt, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not load item"})
	}
	return c.JSON(http.StatusOK, item)
}

// Create handles POST /api/data/:type.  Uploaded files are written to disk
// before the row is inserted; any failure after that point removes the
// just-written files so a failed create leaves nothing behind.
func (h *ItemHandler) Create(c echo.Context) error {
	rt, ok := resolveType(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid type"})
	}

	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	names, err := h.saveUploads(c)
	if err != nil {
		return uploadError(c, err)
	}
	refs := asset.ToImageRefs(names)

	if req.Name == "" {
		h.Assets.Remove(refs)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name is required"})
	}

	fields := model.ItemFields{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		Images:      refs,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Items.Create(ctx, rt, fields)
	if err != nil {
		// Compensating delete: the row never landed, so the files must go too.
		h.Assets.Remove(refs)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create item"})
	}

	h.publish(c, "created", rt, id, req.Name, len(refs))
	return c.JSON(http.StatusCreated, echo.Map{"message": "Item created", "id": id})
}

// Update handles PUT /api/data/:type/:id.  New uploads supersede the
// record's existing images; a request without files leaves the stored images
// untouched.
func (h *ItemHandler) Update(c echo.Context) error {
	rt, ok := resolveType(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid type"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	names, err := h.saveUploads(c)
	if err != nil {
		return uploadError(c, err)
	}
	newRefs := asset.ToImageRefs(names)

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Items.GetByID(ctx, rt, id)
	if err != nil {
		// Nothing to attach the uploads to.
		h.Assets.Remove(newRefs)
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not load item"})
	}

	if req.Name == "" {
		h.Assets.Remove(newRefs)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name is required"})
	}

	fields := model.ItemFields{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
	}
	if len(newRefs) > 0 {
		// Superseded files are removed up front; the update below replaces
		// the references in the same request.
		h.Assets.Remove(imageRefsOf(existing))
		fields.Images = newRefs
	}

	if err := h.Items.Update(ctx, rt, id, fields); err != nil {
		if len(newRefs) > 0 {
			h.Assets.Remove(newRefs)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "No changes made"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not update item"})
	}

	h.publish(c, "updated", rt, id, req.Name, len(newRefs))
	return c.JSON(http.StatusOK, echo.Map{"message": "Item updated"})
}

// Delete handles DELETE /api/data/:type/:id.  The record's image files are
// removed after the row is gone; a concurrent delete losing the race
// observes zero affected rows and reports not found.
func (h *ItemHandler) Delete(c echo.Context) error {
	rt, ok := resolveType(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid type"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Items.GetByID(ctx, rt, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not load item"})
	}

	if err := h.Items.Delete(ctx, rt, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not delete item"})
	}

	h.Assets.Remove(imageRefsOf(existing))

	name, _ := existing["name"].(string)
	h.publish(c, "deleted", rt, id, name, 0)
	return c.JSON(http.StatusOK, echo.Map{"message": "Item deleted"})
}

// saveUploads persists the request's image files, if any, and returns the
// stored filenames in upload order.  A non-multipart request yields no
// files and no error.
func (h *ItemHandler) saveUploads(c echo.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	var fhs []*multipart.FileHeader
	if form != nil {
		fhs = form.File[imagesField]
	}
	if len(fhs) == 0 {
		return nil, nil
	}
	return h.Assets.SaveAll(fhs, imagesField)
}

// uploadError maps asset validation failures to 400 and everything else to
// 500.  SaveAll has already cleaned up its partial writes.
func uploadError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, asset.ErrUnsupportedFileType):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unsupported file type"})
	case errors.Is(err, asset.ErrFileTooLarge):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "file too large"})
	case errors.Is(err, asset.ErrTooManyFiles):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "too many files"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not store upload"})
}

// imageRefsOf extracts the normalized images field from a stored record.
func imageRefsOf(item map[string]any) []model.ImageRef {
	refs, _ := item["images"].([]model.ImageRef)
	return refs
}

// publish sends a content-change event, best effort.
func (h *ItemHandler) publish(c echo.Context, action string, rt model.ResourceType, id uint64, name string, images int) {
	if h.Events == nil {
		return
	}
	actor, _ := c.Get("user_id").(uint64)
	_ = h.Events.PublishContentChanged(c.Request().Context(), queue.ContentEvent{
		Action:     action,
		Type:       rt.Name,
		ItemID:     id,
		Name:       name,
		ActorID:    actor,
		ImageCount: images,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// reqCtx bounds a database call to the request with a timeout.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
