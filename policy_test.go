package pagecache

import "testing"

func TestShouldRevalidate(t *testing.T) {
	eq := func(a, b int) bool { return a == b }
	ptr := func(v int) *int { return &v }

	cases := []struct {
		name          string
		index         int
		cached        *int
		rctx          *revalidationContext[int]
		revalidateAll bool
		want          bool
		reason        string
	}{
		{
			name:          "revalidate all wins over cached",
			index:         2,
			cached:        ptr(5),
			revalidateAll: true,
			want:          true,
			reason:        "revalidate_all",
		},
		{
			name:   "forced context refetches cached page",
			index:  1,
			cached: ptr(5),
			rctx:   &revalidationContext[int]{force: true},
			want:   true,
			reason: "forced",
		},
		{
			name:   "plain run always refetches first page",
			index:  0,
			cached: ptr(5),
			want:   true,
			reason: "first_page",
		},
		{
			name:   "plain run reuses cached later page",
			index:  1,
			cached: ptr(5),
			want:   false,
		},
		{
			name:   "miss refetches",
			index:  1,
			rctx:   &revalidationContext[int]{originalData: []int{1, 2}},
			want:   true,
			reason: "miss",
		},
		{
			name:   "context suppresses first page rule",
			index:  0,
			cached: ptr(1),
			rctx:   &revalidationContext[int]{originalData: []int{1, 2}},
			want:   false,
		},
		{
			name:   "unchanged page reused",
			index:  1,
			cached: ptr(2),
			rctx:   &revalidationContext[int]{originalData: []int{1, 2}},
			want:   false,
		},
		{
			name:   "changed page refetched",
			index:  1,
			cached: ptr(9),
			rctx:   &revalidationContext[int]{originalData: []int{1, 2}},
			want:   true,
			reason: "changed",
		},
		{
			name:   "page beyond snapshot refetched",
			index:  3,
			cached: ptr(9),
			rctx:   &revalidationContext[int]{originalData: []int{1, 2}},
			want:   true,
			reason: "changed",
		},
		{
			name:   "context without snapshot reuses cached",
			index:  1,
			cached: ptr(9),
			rctx:   &revalidationContext[int]{},
			want:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := shouldRevalidate(tc.index, tc.cached, tc.rctx, tc.revalidateAll, eq)
			if got != tc.want || reason != tc.reason {
				t.Fatalf("got (%v,%q) want (%v,%q)", got, reason, tc.want, tc.reason)
			}
		})
	}
}
