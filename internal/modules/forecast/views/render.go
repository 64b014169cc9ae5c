package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"

	"pwa-weather/internal/modules/forecast/cards"
)

var pageTmpl *template.Template

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	pageTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded page templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// CityOption is one entry of the add-city selector.
type CityOption struct {
	Key   string
	Label string
}

// CardsData is the view model for the card container.
type CardsData struct {
	Loading bool
	Cards   []cards.Card
}

type PageData struct {
	CardsData
	DialogClass string
	LoginLabel  string
	Cities      []CityOption
}

func RenderPage(w io.Writer, data *PageData) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "index.html", data)
}

// RenderCardsPartial executes only the card container into w.
func RenderCardsPartial(w io.Writer, data *CardsData) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "partials/cards.html", data)
}
