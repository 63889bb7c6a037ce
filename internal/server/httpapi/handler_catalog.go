package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *Server) listCategories(c *gin.Context) {
	list, err := s.services.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createCategory(c *gin.Context) {
	var req categoryRequest
	if !s.bindJSON(c, &req) {
		return
	}

	cat, err := s.services.Catalog.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) updateCategory(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req categoryRequest
	if !s.bindJSON(c, &req) {
		return
	}

	cat, err := s.services.Catalog.UpdateCategory(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.services.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

func (s *Server) listProducts(c *gin.Context) {
	list, err := s.services.Catalog.ListProducts(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	p, err := s.services.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) createProduct(c *gin.Context) {
	in, err := productForm(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	img, closeImg, err := imageForm(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer closeImg()

	p, err := s.services.Catalog.CreateProduct(c.Request.Context(), in, img)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	in, err := productForm(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	img, closeImg, err := imageForm(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer closeImg()

	p, err := s.services.Catalog.UpdateProduct(c.Request.Context(), id, in, img)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.services.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// productForm reads the multipart product fields.
func productForm(c *gin.Context) (services.ProductInput, error) {
	in := services.ProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}

	price := strings.TrimSpace(c.PostForm("price"))
	stock := strings.TrimSpace(c.PostForm("stock"))
	category := strings.TrimSpace(c.PostForm("categoryId"))
	if price == "" || stock == "" || category == "" {
		return in, common.Validationf("name, description, price, stock and categoryId are required")
	}

	var err error
	if in.Price, err = decimal.NewFromString(price); err != nil {
		return in, common.Validationf("invalid price %q", price)
	}
	if in.Stock, err = strconv.Atoi(stock); err != nil {
		return in, common.Validationf("invalid stock %q", stock)
	}
	if in.CategoryID, err = strconv.ParseInt(category, 10, 64); err != nil {
		return in, common.Validationf("invalid categoryId %q", category)
	}
	return in, nil
}

// imageForm opens the optional "image" file. The returned func closes it.
func imageForm(c *gin.Context) (*services.ImageUpload, func(), error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, common.Validationf("invalid image upload: %s", err.Error())
	}

	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &services.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
