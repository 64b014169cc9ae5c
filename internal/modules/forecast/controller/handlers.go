package controller

import (
	"io"
	"net/http"
	"strings"

	"pwa-weather/internal/modules/forecast/types"
	"pwa-weather/internal/modules/forecast/views"
	"pwa-weather/internal/utils"
)

func (c *forecastControllerImpl) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := &views.PageData{
		CardsData:   c.cardsData(),
		DialogClass: c.dialog.Class(),
		LoginLabel:  c.bridge.Label(),
		Cities:      c.options,
	}
	err := utils.WriteHTML(w, http.StatusOK, func(out io.Writer) error {
		return views.RenderPage(out, data)
	})
	if err != nil {
		c.logger.Error("page template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
	}
}

func (c *forecastControllerImpl) handleCardsPartial(w http.ResponseWriter, r *http.Request) {
	data := c.cardsData()
	err := utils.WriteHTML(w, http.StatusOK, func(out io.Writer) error {
		return views.RenderCardsPartial(out, &data)
	})
	if err != nil {
		c.logger.Error("cards partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
	}
}

func (c *forecastControllerImpl) handleRefresh(w http.ResponseWriter, r *http.Request) {
	c.Refresh(r.Context())
	backToPage(w, r)
}

func (c *forecastControllerImpl) handleDialogOpen(w http.ResponseWriter, r *http.Request) {
	c.dialog.Show()
	backToPage(w, r)
}

func (c *forecastControllerImpl) handleDialogCancel(w http.ResponseWriter, r *http.Request) {
	c.dialog.Cancel()
	backToPage(w, r)
}

func (c *forecastControllerImpl) handleAddCity(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid form")
		return
	}
	key := strings.TrimSpace(r.PostForm.Get("key"))
	if key == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing city key")
		return
	}
	label := strings.TrimSpace(r.PostForm.Get("label"))
	if label == "" {
		label = labelFor(c.options, key)
	}

	if err := c.dialog.ConfirmAdd(r.Context(), key, label); err != nil {
		c.logger.Error("add city failed", "city", key, "error", err)
	}
	backToPage(w, r)
}

func (c *forecastControllerImpl) handleLogin(w http.ResponseWriter, r *http.Request) {
	c.bridge.SendLoginToggle()
	backToPage(w, r)
}

func (c *forecastControllerImpl) handleCities(w http.ResponseWriter, r *http.Request) {
	entries := c.cities.Entries()
	if entries == nil {
		entries = []types.CityEntry{}
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (c *forecastControllerImpl) handleCards(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"loading": c.renderer.Loading(),
		"cards":   c.renderer.Snapshot(),
	})
}

func (c *forecastControllerImpl) cardsData() views.CardsData {
	return views.CardsData{
		Loading: c.renderer.Loading(),
		Cards:   c.renderer.Snapshot(),
	}
}

func backToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
