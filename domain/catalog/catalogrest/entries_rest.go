package catalogrest

import (
	"errors"
	"net/http"
	"portfolio/bizerror"
	"portfolio/domain"
	"portfolio/domain/catalog"
	"portfolio/misc"
	"portfolio/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathCatalogEntries = "/v1/catalog-entries"
)

func RegisterCatalogEntriesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathCatalogEntries, middleWares...)
	g.GET("", handleQuery)
	g.POST("", handleCreate)
	g.GET(":id", handleDetail)
	g.PUT(":id", handleUpdate)
	g.DELETE(":id", handleDelete)
}

func handleQuery(c *gin.Context) {
	query := domain.EntryQuery{}
	err := c.MustBindWith(&query, binding.Query)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := query.ValidateStates(); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	entries, err := catalog.QueryEntriesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: entries, Total: uint64(len(*entries))})
}

func handleCreate(c *gin.Context) {
	creation := domain.EntryCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	created, err := catalog.CreateEntryFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, created)
}

func handleDetail(c *gin.Context) {
	detail, err := catalog.DetailEntryFunc(c.Param("id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleUpdate(c *gin.Context) {
	parsedId := parseId(c)

	updating := domain.EntryUpdating{}
	err := c.ShouldBindBodyWith(&updating, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	updated, err := catalog.UpdateEntryFunc(parsedId, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updated)
}

func handleDelete(c *gin.Context) {
	parsedId := parseId(c)

	body := ReasonBody{}
	err := c.ShouldBindBodyWith(&body, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	err = catalog.DeleteEntryFunc(parsedId, body.Reason, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func parseId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}
