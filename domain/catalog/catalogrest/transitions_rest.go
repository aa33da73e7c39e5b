package catalogrest

import (
	"net/http"
	"portfolio/bizerror"
	"portfolio/domain"
	"portfolio/domain/catalog"
	"portfolio/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type ReasonBody struct {
	Reason string `json:"reason" binding:"required"`
}

type ApprovalBody struct {
	Note string `json:"note" binding:"omitempty,lte=512"`
}

type BulkSubmissionBody struct {
	IDs []types.ID `json:"ids" binding:"required,min=1"`
}

func RegisterCatalogTransitionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathCatalogEntries, middleWares...)
	g.POST(":id/submissions", handleSubmit)
	g.POST(":id/approvals", handleApprove)
	g.POST(":id/rejections", handleReject)
	g.POST(":id/executions", handleStartExecution)
	g.POST(":id/suspensions", handleSuspend)
	g.POST(":id/resumptions", handleResume)
	g.POST(":id/completions", handleComplete)
	g.POST(":id/edit-requests", handleRequestEdit)
	g.POST(":id/draft-returns", handleReturnToDraft)
	g.POST(":id/disbursements", handleRecordDisbursement)

	b := r.Group("/v1/catalog-submissions", middleWares...)
	b.POST("", handleBulkSubmit)
}

func handleSubmit(c *gin.Context) {
	err := catalog.SubmitForApprovalFunc(parseId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleBulkSubmit(c *gin.Context) {
	body := BulkSubmissionBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	results := catalog.BulkSubmitForApprovalFunc(body.IDs, session.ExtractSessionFromGinContext(c))
	c.JSON(http.StatusOK, results)
}

func handleApprove(c *gin.Context) {
	body := ApprovalBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil && err.Error() != "EOF" {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	err := catalog.ApproveFunc(parseId(c), body.Note, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleReject(c *gin.Context) {
	body := ReasonBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	err := catalog.RejectFunc(parseId(c), body.Reason, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleStartExecution(c *gin.Context) {
	err := catalog.StartExecutionFunc(parseId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleSuspend(c *gin.Context) {
	body := ReasonBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	err := catalog.SuspendFunc(parseId(c), body.Reason, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleResume(c *gin.Context) {
	err := catalog.ResumeFunc(parseId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleComplete(c *gin.Context) {
	err := catalog.CompleteFunc(parseId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleRequestEdit(c *gin.Context) {
	err := catalog.RequestEditFunc(parseId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleReturnToDraft(c *gin.Context) {
	err := catalog.ReturnToDraftFunc(parseId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleRecordDisbursement(c *gin.Context) {
	recording := domain.FinanceRecording{}
	if err := c.ShouldBindBodyWith(&recording, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	err := catalog.RecordDisbursementFunc(parseId(c), &recording, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}
