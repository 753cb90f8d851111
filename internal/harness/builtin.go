package harness

func count(n int) *int { return &n }

func year(y int64) *int64 { return &y }

// builtinScenarios are the catalog's reference queries. scenarios/*.yaml
// holds the same definitions as files.
var builtinScenarios = []Scenario{
	{
		Name:        "actors_ordered_by_identity",
		Description: "All actors ordered by identity",
		Query:       QuerySpec{OrderBy: []string{"actor.identity"}},
		Expect: Expectation{
			Count: count(1137),
			Rows:  []RowExpectation{{At: 0, Identity: "A.J. Danna"}},
		},
	},
	{
		Name:        "actor_by_identity",
		Description: "The actor named Marion Cotillard",
		Query: QuerySpec{Where: []Condition{
			{Field: "actor.identity", Equals: "Marion Cotillard"},
		}},
		Expect: Expectation{
			Count: count(1),
			Rows:  []RowExpectation{{At: 0, Identity: "Marion Cotillard"}},
		},
	},
	{
		Name:        "actors_born_in_1985",
		Description: "Actors born in 1985",
		Query: QuerySpec{Where: []Condition{
			{Field: "actor.birthdate", Year: year(1985)},
		}},
		Expect: Expectation{Count: count(10)},
	},
	{
		Name:        "actors_by_role_name",
		Description: "Actors who played Harley QUINN",
		Query: QuerySpec{Distinct: true, Where: []Condition{
			{Field: "role.name", Equals: "Harley QUINN"},
		}},
		Expect: Expectation{
			Count: count(2),
			Rows: []RowExpectation{
				{At: 0, Identity: "Margot Robbie"},
				{At: 1, Identity: "Margot Robbie"},
			},
		},
	},
	{
		Name:        "actors_in_films_of_2015",
		Description: "Actors in films released in 2015",
		Query: QuerySpec{Distinct: true, Where: []Condition{
			{Field: "film.release_year", Year: year(2015)},
		}},
		Expect: Expectation{Count: count(0)},
	},
	{
		Name:        "actors_in_french_films",
		Description: "Actors in films produced in France",
		Query: QuerySpec{Distinct: true, Where: []Condition{
			{Field: "country.name", Equals: "France"},
		}},
		Expect: Expectation{Count: count(158)},
	},
	{
		Name:        "actors_in_french_films_of_2017",
		Description: "Actors in films produced in France and released in 2017",
		Query: QuerySpec{Distinct: true, Where: []Condition{
			{Field: "country.name", Equals: "France"},
			{Field: "film.release_year", Year: year(2017)},
		}},
		Expect: Expectation{Count: count(24)},
	},
	{
		Name:        "actors_directed_by_ridley_scott",
		Description: "Actors in films directed by Ridley Scott and released between 2010 and 2020",
		Note: "The reference query required the director identity to equal both 'Scott' and " +
			"'Ridley', which no single value can satisfy. This scenario matches the full name.",
		Query: QuerySpec{Distinct: true, Where: []Condition{
			{Field: "director.identity", Equals: "Ridley Scott"},
			{Field: "film.release_year", YearBetween: []int64{2010, 2020}},
		}},
		Expect: Expectation{Count: count(27)},
	},
}

// Builtin returns a registry holding the built-in scenarios.
// Each call returns a new registry.
func Builtin() *Registry {
	reg := NewRegistry()
	for _, s := range builtinScenarios {
		if err := reg.Add(&s); err != nil {
			panic(err)
		}
	}
	return reg
}
