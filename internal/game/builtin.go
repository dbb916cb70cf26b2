package game

// Builtin returns the profiles of the six supported games.
func Builtin() []Profile {
	profiles := []Profile{
		{
			ID:          "playwhe",
			Name:        "Play Whe",
			Prefix:      "pw",
			DigitWidth:  2,
			HasLine:     true,
			LineCount:   9,
			HolidayJoin: JoinByDate,
			NumberSort:  SortFirstNumber,
			ExportColumns: []ExportColumn{
				{Header: "DrawNo", Field: "@draw_number"},
				{Header: "DrawDates", Field: "@raw_date"},
				{Header: "Number", Field: "@numbers"},
				{Header: "Line", Field: "@line"},
			},
		},
		{
			ID:          "pick2",
			Name:        "Pick 2",
			Prefix:      "p2",
			DigitWidth:  2,
			HolidayJoin: JoinByNumber,
			NumberSort:  SortFirstNumber,
		},
		{
			ID:          "pick4",
			Name:        "Pick 4",
			Prefix:      "p4",
			DigitWidth:  4,
			HolidayJoin: JoinAuto,
			NumberSort:  SortFirstNumber,
		},
		{
			ID:          "cashpot",
			Name:        "Cashpot",
			Prefix:      "cp",
			DigitWidth:  2,
			MultiNumber: true,
			HolidayJoin: JoinAuto,
			NumberSort:  SortDrawNumber,
			ExportColumns: []ExportColumn{
				{Header: "DrawNo", Field: "@draw_number"},
				{Header: "DrawDates", Field: "@raw_date"},
				{Header: "AllNos", Field: "AllNos"},
				{Header: "MU", Field: "MU"},
				{Header: "Wins", Field: "Wins"},
				{Header: "Draws", Field: "Draws"},
				{Header: "Nfpd", Field: "Nfpd"},
			},
		},
		{
			ID:          "lotto",
			Name:        "Lotto Plus",
			Prefix:      "lo",
			DigitWidth:  2,
			MultiNumber: true,
			HolidayJoin: JoinAuto,
			NumberSort:  SortDrawNumber,
		},
		{
			ID:          "winforlife",
			Name:        "Win for Life",
			Prefix:      "wl",
			DigitWidth:  2,
			MultiNumber: true,
			HolidayJoin: JoinByNumber,
			NumberSort:  SortDrawNumber,
			ExportColumns: []ExportColumn{
				{Header: "DrawNos", Field: "@draw_number"},
				{Header: "DrawDates", Field: "@raw_date"},
				{Header: "AllNos", Field: "AllNos"},
				{Header: "CBall", Field: "CBall"},
				{Header: "Wins", Field: "Wins"},
				{Header: "Draws", Field: "Draws"},
				{Header: "Nfpd", Field: "Nfpd"},
			},
		},
	}
	for i := range profiles {
		profiles[i] = profiles[i].withDefaults()
	}
	return profiles
}
