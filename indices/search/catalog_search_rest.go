package search

import (
	"net/http"
	"portfolio/bizerror"
	"portfolio/domain"
	"portfolio/misc"
	"portfolio/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathCatalogSearch = "/v1/catalog-search"
)

func RegisterCatalogSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathCatalogSearch, middleWares...)
	g.GET("", handleSearch)
}

func handleSearch(c *gin.Context) {
	query := domain.EntryQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := query.ValidateStates(); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	details, err := SearchEntriesFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: details, Total: uint64(len(details))})
}
