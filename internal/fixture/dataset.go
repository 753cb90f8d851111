// Package fixture builds a deterministic synthetic movie catalog.
//
// The dataset reproduces the expected results of the built-in scenarios
// without access to the production catalog: 1137 actors, ten of them born in
// 1985, two distinct "Margot Robbie" actors who played "Harley QUINN", 158
// actors in French films (24 in 2017), 27 actors in Ridley Scott films
// released between 2010 and 2020 and no film released in 2015.
package fixture

import "fmt"

// Director is a film director row.
type Director struct {
	ID       int64
	Identity string
}

// Country is a production country row.
type Country struct {
	ID   int64
	Name string
}

// Film is a film row with its production countries.
type Film struct {
	ID          int64
	Title       string
	ReleaseYear int64
	DirectorID  int64
	CountryIDs  []int64
}

// Actor is an actor row. Birthdate is "YYYY-MM-DD" or empty for unknown.
type Actor struct {
	ID        int64
	Identity  string
	Birthdate string
}

// Role links an actor to a film.
type Role struct {
	ID      int64
	Name    string
	ActorID int64
	FilmID  int64
}

// Dataset is a complete catalog.
type Dataset struct {
	Directors []Director
	Countries []Country
	Films     []Film
	Actors    []Actor
	Roles     []Role
}

// ActorCount is the number of actors in the dataset.
const ActorCount = 1137

const (
	countryFrance int64 = iota + 1
	countryBelgium
	countryUSA
	countryUK
	countryItaly
	countryGermany
)

const (
	directorRidleyScott int64 = iota + 1
	directorTonyScott
	directorDavidAyer
	directorCathyYan
	directorFrench
	firstFillerDirector
)

const fillerDirectors = 6

// fillerYears are the release years cycled through by filler films. 2015 is
// left out so that year has no films at all.
var fillerYears = []int64{1994, 1999, 2003, 2008, 2011, 2013, 2014, 2016, 2018, 2022}

var fillerCountries = []int64{countryUSA, countryUK, countryItaly, countryGermany}

type builder struct {
	ds   Dataset
	cast map[int64]bool
}

// Build returns the fixture dataset. It is deterministic.
func Build() *Dataset {
	b := &builder{cast: make(map[int64]bool)}
	b.countries()
	b.directors()
	b.actors()

	// French films. Actors 15-38 are in 2017 French films; actor 15 plays
	// two parts in the first one and 27-30 appear in both.
	b.film("Les Nuits de Septembre", 2017, directorFrench, []int64{countryFrance}, span(15, 30)...)
	b.role("Le Frère", 15, 1)
	b.film("Frontière", 2017, directorFrench, []int64{countryFrance, countryBelgium}, span(27, 38)...)
	b.film("Le Dernier Été", 2012, directorFrench, []int64{countryFrance}, append([]int64{2}, span(39, 100)...)...)
	b.film("La Traversée", 2019, directorFrench, []int64{countryFrance}, span(101, 171)...)

	// Ridley Scott: 27 distinct actors in films of 2010-2020.
	b.film("Robin Hood", 2010, directorRidleyScott, []int64{countryUSA, countryUK}, span(200, 212)...)
	b.film("All the Money in the World", 2017, directorRidleyScott, []int64{countryUSA}, span(210, 220)...)
	b.film("The Last Duel", 2020, directorRidleyScott, []int64{countryUSA}, span(221, 226)...)
	b.film("Alien", 1979, directorRidleyScott, []int64{countryUK}, span(227, 240)...)
	b.film("House of Gucci", 2021, directorRidleyScott, []int64{countryUSA}, span(241, 250)...)
	b.film("Unstoppable", 2010, directorTonyScott, []int64{countryUSA}, span(251, 260)...)

	// Harley QUINN is played by two different actors sharing one identity.
	b.film("Suicide Squad", 2016, directorDavidAyer, []int64{countryUSA}, span(261, 270)...)
	b.role("Harley QUINN", 3, b.lastFilm())
	b.film("Birds of Prey", 2020, directorCathyYan, []int64{countryUSA}, span(271, 280)...)
	b.role("Harley QUINN", 4, b.lastFilm())

	b.fillers()
	return &b.ds
}

func (b *builder) countries() {
	for i, name := range []string{"France", "Belgium", "USA", "UK", "Italy", "Germany"} {
		b.ds.Countries = append(b.ds.Countries, Country{ID: int64(i + 1), Name: name})
	}
}

func (b *builder) directors() {
	names := []string{"Ridley Scott", "Tony Scott", "David Ayer", "Cathy Yan", "Jacques Audiard"}
	for i := 0; i < fillerDirectors; i++ {
		names = append(names, fmt.Sprintf("Director %02d", i+1))
	}
	for i, name := range names {
		b.ds.Directors = append(b.ds.Directors, Director{ID: int64(i + 1), Identity: name})
	}
}

func (b *builder) actors() {
	b.ds.Actors = append(b.ds.Actors,
		Actor{ID: 1, Identity: "A.J. Danna", Birthdate: "1962-04-11"},
		Actor{ID: 2, Identity: "Marion Cotillard", Birthdate: "1975-09-30"},
		Actor{ID: 3, Identity: "Margot Robbie", Birthdate: "1990-07-02"},
		Actor{ID: 4, Identity: "Margot Robbie", Birthdate: "1990-07-02"},
	)
	for id := int64(5); id <= ActorCount; id++ {
		b.ds.Actors = append(b.ds.Actors, Actor{
			ID:        id,
			Identity:  fmt.Sprintf("Performer %04d", id),
			Birthdate: birthdate(id),
		})
	}
}

// birthdate places actors 5-14 in 1985 and everyone else outside it.
// The last actor has no known birthdate.
func birthdate(id int64) string {
	if id == ActorCount {
		return ""
	}
	year := 1940 + id%40
	if id >= 5 && id <= 14 {
		year = 1985
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, 1+id%12, 1+id%28)
}

// fillers casts every actor not yet in a film into non-French films.
func (b *builder) fillers() {
	var rest []int64
	for id := int64(1); id <= ActorCount; id++ {
		if !b.cast[id] {
			rest = append(rest, id)
		}
	}
	const perFilm = 20
	for n := 0; len(rest) > 0; n++ {
		k := min(perFilm, len(rest))
		b.film(
			fmt.Sprintf("Feature %03d", n+1),
			fillerYears[n%len(fillerYears)],
			firstFillerDirector+int64(n%fillerDirectors),
			[]int64{fillerCountries[n%len(fillerCountries)]},
			rest[:k]...,
		)
		rest = rest[k:]
	}
}

// film adds a film and one role per cast member.
func (b *builder) film(title string, year, directorID int64, countries []int64, cast ...int64) {
	id := int64(len(b.ds.Films) + 1)
	b.ds.Films = append(b.ds.Films, Film{
		ID:          id,
		Title:       title,
		ReleaseYear: year,
		DirectorID:  directorID,
		CountryIDs:  countries,
	})
	for _, actorID := range cast {
		b.role(fmt.Sprintf("Character %d-%d", id, actorID), actorID, id)
	}
}

func (b *builder) role(name string, actorID, filmID int64) {
	b.ds.Roles = append(b.ds.Roles, Role{
		ID:      int64(len(b.ds.Roles) + 1),
		Name:    name,
		ActorID: actorID,
		FilmID:  filmID,
	})
	b.cast[actorID] = true
}

func (b *builder) lastFilm() int64 {
	return b.ds.Films[len(b.ds.Films)-1].ID
}

func span(from, to int64) []int64 {
	ids := make([]int64, 0, to-from+1)
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}
