package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/imdbtop/internal/domain"
)

func rec(title, year, rating string, ratedBy int) domain.Record {
	return domain.Record{Title: title, Year: year, Rating: rating, RatedBy: ratedBy, URL: "https://www.imdb.com/title/" + title}
}

func sample() []domain.Record {
	return []domain.Record{
		rec("A", "2010", "8.5", 100),
		rec("B", "2015", "9.0", 50),
		rec("C", "2015", "8.5", 300),
		rec("D", "1999", "9.0", 50),
		rec("E", "2020", "7.1", 1000),
	}
}

func titles(rs []domain.Record) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Title)
	}
	return out
}

func TestFilterByYear_KeepsRelativeOrder(t *testing.T) {
	c := New()
	c.Load([]domain.Record{
		rec("X", "2010", "8.0", 1),
		rec("Y", "2015", "8.0", 1),
		rec("Z", "2015", "8.0", 1),
	})

	require.NoError(t, c.FilterByYear("2015"))
	require.Equal(t, []string{"Y", "Z"}, titles(c.CurrentView()))
	require.Len(t, c.FullSet(), 3)
}

func TestFilterByYear_IsCumulative(t *testing.T) {
	c := New()
	c.Load(sample())

	require.NoError(t, c.FilterByYear("2015"))
	require.NoError(t, c.FilterByYear("2010"))
	require.True(t, c.IsFilteredToEmpty())
	require.Empty(t, c.CurrentView())
}

func TestFilterByPeriod_Symmetric(t *testing.T) {
	a := New()
	a.Load(sample())
	require.NoError(t, a.FilterByPeriod("2000", "2015"))

	b := New()
	b.Load(sample())
	require.NoError(t, b.FilterByPeriod("2015", "2000"))

	require.Equal(t, a.CurrentView(), b.CurrentView())
	require.Equal(t, []string{"A", "B", "C"}, titles(a.CurrentView()))
}

func TestFilterByPeriod_InclusiveBounds(t *testing.T) {
	c := New()
	c.Load(sample())
	require.NoError(t, c.FilterByPeriod("1999", "2010"))
	require.Equal(t, []string{"A", "D"}, titles(c.CurrentView()))

	require.NoError(t, c.FilterByPeriod("2023", "2024"))
	require.True(t, c.IsFilteredToEmpty())
}

func TestFilters_RejectMalformedYears(t *testing.T) {
	c := New()
	c.Load(sample())

	for _, bad := range []string{"", "99", "20155", "20x5", " 2015"} {
		err := c.FilterByYear(bad)
		require.True(t, IsInvalidYear(err), "FilterByYear(%q) err=%v", bad, err)
	}
	require.True(t, IsInvalidYear(c.FilterByPeriod("2000", "abcd")))
	require.True(t, IsInvalidYear(c.FilterByPeriod("1", "2000")))

	// 非法输入不改变视图。
	require.Len(t, c.CurrentView(), 5)
}

func TestFilters_Monotonic(t *testing.T) {
	c := New()
	c.Load(sample())

	steps := []func() error{
		func() error { return c.FilterByPeriod("1990", "2020") },
		func() error { c.SortByRating(); return nil },
		func() error { return c.FilterByPeriod("2010", "2015") },
		func() error { return c.FilterByYear("2015") },
		func() error { return c.FilterByYear("2015") },
	}
	prev := len(c.CurrentView())
	for i, step := range steps {
		require.NoError(t, step())
		n := len(c.CurrentView())
		require.LessOrEqual(t, n, prev, "step %d", i)
		prev = n
	}
}

func TestSortByRating_OrderAndStability(t *testing.T) {
	c := New()
	c.Load([]domain.Record{
		rec("A", "2010", "8.5", 100),
		rec("B", "2015", "9.0", 50),
		rec("C", "2015", "8.5", 300),
		rec("D", "1999", "9.0", 50),
		rec("E", "2020", "10", 1),
		rec("F", "2020", "8.50", 100),
	})
	c.SortByRating()

	got := c.CurrentView()
	// B/D 完全相同，保持原顺序；A/F 数值上同为 8.5 且 rated_by 相同，也保持原顺序。
	require.Equal(t, []string{"E", "B", "D", "C", "A", "F"}, titles(got))

	for i := 0; i+1 < len(got); i++ {
		r1, r2 := got[i], got[i+1]
		ok := r1.RatingValue() > r2.RatingValue() ||
			(r1.RatingValue() == r2.RatingValue() && r1.RatedBy >= r2.RatedBy)
		require.True(t, ok, "%s 不应排在 %s 之前", r1.Title, r2.Title)
	}
}

func TestSortByRating_DoesNotTouchStoredCounts(t *testing.T) {
	c := New()
	c.Load(sample())
	c.SortByRating()
	c.SortByRating()
	c.Reset()
	require.Equal(t, sample(), c.CurrentView())
}

func TestReset_RestoresLoadedRecords(t *testing.T) {
	c := New()
	c.Load(sample())

	require.NoError(t, c.FilterByYear("2015"))
	c.SortByRating()
	require.NoError(t, c.FilterByPeriod("2016", "2030"))
	c.Reset()

	require.Equal(t, sample(), c.CurrentView())
	require.Equal(t, sample(), c.FullSet())
}

func TestReset_ViewIsIndependentCopy(t *testing.T) {
	c := New()
	c.Load(sample())
	c.Reset()
	c.SortByRating()

	require.Equal(t, sample(), c.FullSet())
}

func TestAccessors_ReturnCopies(t *testing.T) {
	in := sample()
	c := New()
	c.Load(in)
	in[0].Title = "mutated"

	v := c.CurrentView()
	v[1].Title = "mutated"
	f := c.FullSet()
	f[2].Title = "mutated"

	require.Equal(t, sample(), c.CurrentView())
	require.Equal(t, sample(), c.FullSet())
}

func TestLoad_OverwritesFilters(t *testing.T) {
	c := New()
	require.False(t, c.Loaded())
	require.True(t, c.IsFilteredToEmpty())

	c.Load(sample())
	require.NoError(t, c.FilterByYear("1999"))
	c.Load(sample()[:2])

	require.True(t, c.Loaded())
	require.Equal(t, []string{"A", "B"}, titles(c.CurrentView()))
	require.True(t, c.Contains("B"))
	require.False(t, c.Contains("E"))
}
