// internal/services/item_service_test.go
package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openkb/product-kb/internal/apperr"
	"github.com/openkb/product-kb/internal/config"
	"github.com/openkb/product-kb/internal/database"
	"github.com/openkb/product-kb/internal/models"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Item{}, &models.Image{}))

	return database.NewStore(db, true)
}

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxImageBytes:    4 << 20,
		MaxImagesPerItem: 15,
	}
}

type ItemServiceTestSuite struct {
	suite.Suite
	store  *database.Store
	items  *ItemService
	images *ImageService
}

func (s *ItemServiceTestSuite) SetupTest() {
	s.store = newTestStore(s.T())
	s.items = NewItemService(s.store)
	s.images = NewImageService(s.store, testUploadConfig())
}

func (s *ItemServiceTestSuite) TestCreateAndGet() {
	err := s.items.Create(&CreateItemRequest{
		ID:   "p1",
		Name: "Widget",
		Desc: "a small widget",
		Tags: []string{"blue", "small"},
	})
	s.Require().NoError(err)

	item, err := s.items.Get("p1")
	s.Require().NoError(err)
	s.Equal("p1", item.ID)
	s.Equal("Widget", item.Name)
	s.Equal("a small widget", item.Desc)
	s.Equal([]string{"blue", "small"}, item.Tags)
	s.Equal([]string{}, item.Images)

	// Repeated reads without intervening writes are identical.
	again, err := s.items.Get("p1")
	s.Require().NoError(err)
	s.Equal(item, again)
}

func (s *ItemServiceTestSuite) TestCreateDuplicateConflict() {
	req := &CreateItemRequest{ID: "p1", Name: "Widget"}
	s.Require().NoError(s.items.Create(req))

	err := s.items.Create(&CreateItemRequest{ID: "p1", Name: "Other"})
	s.Require().ErrorIs(err, apperr.ErrConflict)
}

func (s *ItemServiceTestSuite) TestCreateValidation() {
	err := s.items.Create(&CreateItemRequest{Name: "Widget"})
	s.Require().ErrorIs(err, apperr.ErrInvalidInput)

	err = s.items.Create(&CreateItemRequest{ID: "p1"})
	s.Require().ErrorIs(err, apperr.ErrInvalidInput)
}

func (s *ItemServiceTestSuite) TestGetNotFound() {
	_, err := s.items.Get("missing")
	s.Require().ErrorIs(err, apperr.ErrNotFound)
}

func (s *ItemServiceTestSuite) TestUpdatePartial() {
	s.Require().NoError(s.items.Create(&CreateItemRequest{
		ID:   "p1",
		Name: "Widget",
		Desc: "original",
		Tags: []string{"blue"},
	}))

	// Patch only the name; desc and tags stay untouched.
	name := "Gadget"
	s.Require().NoError(s.items.Update("p1", &UpdateItemRequest{Name: &name}))

	item, err := s.items.Get("p1")
	s.Require().NoError(err)
	s.Equal("Gadget", item.Name)
	s.Equal("original", item.Desc)
	s.Equal([]string{"blue"}, item.Tags)

	// Explicit empty values are applied, absent fields are not.
	empty := ""
	noTags := []string{}
	s.Require().NoError(s.items.Update("p1", &UpdateItemRequest{Desc: &empty, Tags: &noTags}))

	item, err = s.items.Get("p1")
	s.Require().NoError(err)
	s.Equal("Gadget", item.Name)
	s.Equal("", item.Desc)
	s.Equal([]string{}, item.Tags)
}

func (s *ItemServiceTestSuite) TestUpdateNotFound() {
	name := "Gadget"
	err := s.items.Update("missing", &UpdateItemRequest{Name: &name})
	s.Require().ErrorIs(err, apperr.ErrNotFound)
}

func (s *ItemServiceTestSuite) TestUpdateEmptyNameRejected() {
	s.Require().NoError(s.items.Create(&CreateItemRequest{ID: "p1", Name: "Widget"}))

	name := "  "
	err := s.items.Update("p1", &UpdateItemRequest{Name: &name})
	s.Require().ErrorIs(err, apperr.ErrInvalidInput)
}

func (s *ItemServiceTestSuite) TestDeleteCascadesToImages() {
	added, err := s.images.Upload("p1", "Widget", []UploadFile{
		{Filename: "a.png", ContentType: "image/png", Data: []byte("a")},
		{Filename: "b.png", ContentType: "image/png", Data: []byte("b")},
	})
	s.Require().NoError(err)
	s.Equal(2, added)

	infos, err := s.images.List("p1")
	s.Require().NoError(err)
	s.Require().Len(infos, 2)

	s.Require().NoError(s.items.Delete("p1"))

	_, err = s.items.Get("p1")
	s.Require().ErrorIs(err, apperr.ErrNotFound)

	infos, err = s.images.List("p1")
	s.Require().NoError(err)
	s.Empty(infos)

	_, _, err = s.images.Serve(1)
	s.Require().ErrorIs(err, apperr.ErrNotFound)
}

func (s *ItemServiceTestSuite) TestDeleteNotFound() {
	s.Require().ErrorIs(s.items.Delete("missing"), apperr.ErrNotFound)
}

func (s *ItemServiceTestSuite) seedSearchItems() {
	s.Require().NoError(s.items.Create(&CreateItemRequest{
		ID: "p1", Name: "Widget", Desc: "a compact widget", Tags: []string{"blue", "small"},
	}))
	s.Require().NoError(s.items.Create(&CreateItemRequest{
		ID: "p2", Name: "Gadget", Desc: "", Tags: []string{"red"},
	}))
	s.Require().NoError(s.items.Create(&CreateItemRequest{
		ID: "p3", Name: "Sprocket BLUE", Desc: "industrial", Tags: nil,
	}))
}

func (s *ItemServiceTestSuite) TestSearchEmptyQueryMatchesAll() {
	s.seedSearchItems()

	total, items, err := s.items.Search("", 100, 0)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(items, 3)
}

func (s *ItemServiceTestSuite) TestSearchCaseInsensitiveAcrossFields() {
	s.seedSearchItems()

	// name
	total, items, err := s.items.Search("WIDGET", 100, 0)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("p1", items[0].ID)

	// id
	total, _, err = s.items.Search("p2", 100, 0)
	s.Require().NoError(err)
	s.Equal(int64(1), total)

	// desc
	total, items, err = s.items.Search("industrial", 100, 0)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("p3", items[0].ID)

	// tag value matches p1 ("blue" tag) and p3 (name)
	total, _, err = s.items.Search("blue", 100, 0)
	s.Require().NoError(err)
	s.Equal(int64(2), total)

	total, _, err = s.items.Search("zzz", 100, 0)
	s.Require().NoError(err)
	s.Equal(int64(0), total)
}

func (s *ItemServiceTestSuite) TestSearchMatchesRawTagEncoding() {
	s.seedSearchItems()

	// The tag column is matched in its encoded form, so the encoding's
	// punctuation is searchable.
	total, items, err := s.items.Search(`"blue","small"`, 100, 0)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("p1", items[0].ID)
}

func (s *ItemServiceTestSuite) TestSearchOrderAndPagination() {
	s.seedSearchItems()

	total, page, err := s.items.Search("", 2, 0)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(page, 2)
	s.Equal("p1", page[0].ID)
	s.Equal("p2", page[1].ID)

	_, page, err = s.items.Search("", 2, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("p3", page[0].ID)

	// total is independent of limit/offset
	smallTotal, _, err := s.items.Search("", 1, 0)
	s.Require().NoError(err)
	bigTotal, _, err := s.items.Search("", 100, 0)
	s.Require().NoError(err)
	s.Equal(bigTotal, smallTotal)
}

func (s *ItemServiceTestSuite) TestSearchClampsLimitAndOffset() {
	s.seedSearchItems()

	// limit clamps up to 1, offset up to 0
	total, page, err := s.items.Search("", -5, -10)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(page, 1)
	s.Equal("p1", page[0].ID)
}

func TestItemServiceSuite(t *testing.T) {
	suite.Run(t, new(ItemServiceTestSuite))
}
