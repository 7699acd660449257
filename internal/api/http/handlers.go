package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/sainath9392/tinylink/internal/database"
	"github.com/sainath9392/tinylink/internal/metrics"
	"github.com/sainath9392/tinylink/internal/service"
)

func logError(r *http.Request, op string, err error) {
	httplog.LogEntrySetField(r.Context(), "op", slog.StringValue(op))
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
}

func handleHealth(db Pinger) http.HandlerFunc {
	const op = "api.http.handleHealth"

	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logError(r, op, err)

			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, "unavailable")
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	}
}

func handleCreateLink(svc LinkService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleCreateLink"

	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			metrics.LinksCreatedTotal.WithLabelValues(metrics.StatusInvalid).Inc()

			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, emptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidRequestBodyResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			metrics.LinksCreatedTotal.WithLabelValues(metrics.StatusInvalid).Inc()

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, validationErrorResponse(err))
			return
		}

		link, err := svc.CreateLink(r.Context(), service.CreateLinkParams{
			OriginalURL: req.URL,
			ShortCode:   req.ShortCode,
			OwnerID:     r.Header.Get(OwnerHeader),
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrOriginalURLRequired):
				metrics.LinksCreatedTotal.WithLabelValues(metrics.StatusInvalid).Inc()
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, urlRequiredResponse)
			case errors.Is(err, service.ErrInvalidShortCode):
				metrics.LinksCreatedTotal.WithLabelValues(metrics.StatusInvalid).Inc()
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, invalidShortCodeResponse)
			case errors.Is(err, database.ErrShortCodeExists):
				metrics.LinksCreatedTotal.WithLabelValues(metrics.StatusConflict).Inc()
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, shortCodeTakenResponse)
			default:
				metrics.LinksCreatedTotal.WithLabelValues(metrics.StatusError).Inc()
				logError(r, op, err)
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, serverErrorResponse)
			}
			return
		}

		metrics.LinksCreatedTotal.WithLabelValues(metrics.StatusSuccess).Inc()

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, toLinkResponse(link))
	}
}

func handleListLinks(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleListLinks"

	return func(w http.ResponseWriter, r *http.Request) {
		links, err := svc.ListLinks(r.Context(), r.Header.Get(OwnerHeader))
		if err != nil {
			logError(r, op, err)

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toLinkResponses(links))
	}
}

func handleGetLink(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleGetLink"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		link, err := svc.GetLink(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, linkNotFoundResponse)
				return
			}

			logError(r, op, err)

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toLinkResponse(link))
	}
}

func handleDeleteLink(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleDeleteLink"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		err := svc.DeleteLink(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, linkNotFoundResponse)
				return
			}

			logError(r, op, err)

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, deletedResponse)
	}
}

// handleRedirect answers with plain text rather than JSON because it is hit
// by browsers following a short link.
func handleRedirect(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		link, err := svc.ResolveShortCode(r.Context(), shortCode)
		if err != nil {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")

			if errors.Is(err, database.ErrLinkNotFound) {
				metrics.RedirectsTotal.WithLabelValues(metrics.StatusNotFound).Inc()

				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, linkNotFoundResponse.Error)
				return
			}

			metrics.RedirectsTotal.WithLabelValues(metrics.StatusError).Inc()
			logError(r, op, err)

			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, serverErrorResponse.Error)
			return
		}

		metrics.RedirectsTotal.WithLabelValues(metrics.StatusSuccess).Inc()

		// http.Redirect would rewrite a scheme-less target relative to the
		// request path; the stored URL is sent back untouched.
		w.Header().Set("Location", link.OriginalURL)
		w.WriteHeader(http.StatusFound)
	}
}
