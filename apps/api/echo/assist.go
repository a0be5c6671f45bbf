package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/user"
)

type assistApi struct {
	assistant core.Assistant
	validate  *validator.Validate
}

func registerAssistAPI(g *echo.Group, assistant core.Assistant, validate *validator.Validate) {
	api := assistApi{assistant: assistant, validate: validate}

	ag := g.Group("/assist")
	ag.POST("/text", api.text)
	ag.POST("/image", api.image, roleMiddleware(user.RoleClubAdmin))
}

func (api *assistApi) text(ctx echo.Context) error {
	var data TextRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TextRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	text, err := api.assistant.GenerateText(ctx.Request().Context(), data.Topic, core.AssistKind(data.Kind))
	if err != nil {
		return errors.Wrap(err, "generating text")
	}
	return ctx.JSON(http.StatusOK, TextResponse{Text: text})
}

func (api *assistApi) image(ctx echo.Context) error {
	var data ImageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ImageRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	img, err := api.assistant.GenerateImage(ctx.Request().Context(), data.Prompt)
	if err != nil {
		return errors.Wrap(err, "generating image")
	}
	var res ImageResponse
	if img != "" {
		res.Image = &img
	}
	return ctx.JSON(http.StatusOK, res)
}

type (
	TextRequest struct {
		Topic string `json:"topic" validate:"required,notblank"`
		Kind  string `json:"kind" validate:"required,assistkind"`
	}

	TextResponse struct {
		Text string `json:"text"`
	}

	ImageRequest struct {
		Prompt string `json:"prompt" validate:"required,notblank"`
	}

	// ImageResponse carries a data URL, or null when no image could be generated.
	ImageResponse struct {
		Image *string `json:"image"`
	}
)

func (tr *TextRequest) Validate(validate *validator.Validate) error {
	tr.Topic = core.CleanString(tr.Topic)
	tr.Kind = core.CleanString(tr.Kind)
	return validate.Struct(tr)
}

func (ir *ImageRequest) Validate(validate *validator.Validate) error {
	ir.Prompt = core.CleanString(ir.Prompt)
	return validate.Struct(ir)
}
