package strategy

// Builtins returns the definitions of every built-in strategy.
func Builtins() []Definition {
	return []Definition{
		{
			Name:        "SERIES_STRATEGY",
			Description: "Sequential numbers from start by step",
			NewConfig:   func() ParamConfig { return &SeriesConfig{Start: 1, Step: 1} },
			Build:       newSeries,
		},
		{
			Name:        "RANDOM_NUMBER_RANGE_STRATEGY",
			Description: "Uniform numbers in [start, end)",
			NewConfig:   func() ParamConfig { return &RandomNumberRangeConfig{Start: 0, End: 99, Step: 1} },
			Build:       newRandomNumberRange,
		},
		{
			Name:        "DISTRIBUTED_NUMBER_RANGE_STRATEGY",
			Description: "Integers from weighted ranges",
			NewConfig:   func() ParamConfig { return &DistributedNumberRangeConfig{} },
			Build:       newDistributedNumberRange,
		},
		{
			Name:        "RANDOM_DATE_RANGE_STRATEGY",
			Description: "Uniform dates in [start_date, end_date)",
			NewConfig: func() ParamConfig {
				return &DateRangeConfig{
					StartDate:    "2020-01-01",
					EndDate:      "2020-12-31",
					Format:       defaultDateFormat,
					OutputFormat: defaultDateFormat,
				}
			},
			Build: newRandomDateRange,
		},
		{
			Name:        "DATE_SERIES_STRATEGY",
			Description: "Evenly spaced dates from start_date",
			NewConfig: func() ParamConfig {
				return &DateSeriesConfig{
					StartDate:    "2024-01-01",
					Freq:         "d",
					Format:       defaultDateFormat,
					OutputFormat: defaultDateFormat,
				}
			},
			Build: newDateSeries,
		},
		{
			Name:        "DISTRIBUTED_DATE_RANGE_STRATEGY",
			Description: "Dates from weighted date ranges",
			NewConfig:   func() ParamConfig { return &DistributedDateRangeConfig{} },
			Build:       newDistributedDateRange,
		},
		{
			Name:        "TIME_RANGE_STRATEGY",
			Description: "Clock times in [start_time, end_time], overnight allowed",
			NewConfig: func() ParamConfig {
				return &TimeRangeConfig{StartTime: "00:00:00", EndTime: "23:59:59", Format: defaultTimeFormat}
			},
			Build: newTimeRange,
		},
		{
			Name:        "DISTRIBUTED_TIME_RANGE_STRATEGY",
			Description: "Clock times from weighted time ranges",
			NewConfig:   func() ParamConfig { return &DistributedTimeRangeConfig{} },
			Build:       newDistributedTimeRange,
		},
		{
			Name:        "DISTRIBUTED_CHOICE_STRATEGY",
			Description: "Values drawn from a weighted choice table",
			NewConfig:   func() ParamConfig { return &DistributedChoiceConfig{} },
			Build:       newDistributedChoice,
		},
		{
			Name:        "PATTERN_STRATEGY",
			Description: "Strings matching a regular expression",
			NewConfig:   func() ParamConfig { return &PatternConfig{Regex: `^[A-Za-z0-9]+$`} },
			Build:       newPattern,
		},
		{
			Name:        "REPLACEMENT_STRATEGY",
			Description: "Replace from_value with to_value in an existing column",
			NewConfig:   func() ParamConfig { return &ReplacementConfig{} },
			Build:       newReplacement,
		},
		{
			Name:        "CONCAT_STRATEGY",
			Description: "Concatenate two existing columns",
			NewConfig:   func() ParamConfig { return &ConcatConfig{} },
			Build:       newConcat,
		},
		{
			Name:        "MAPPING_STRATEGY",
			Description: "Map values of another column through a lookup table",
			NewConfig:   func() ParamConfig { return &MappingConfig{} },
			Build:       newMapping,
		},
		{
			Name:        "RANDOM_NAME_STRATEGY",
			Description: "Person first, last or full names",
			NewConfig: func() ParamConfig {
				return &RandomNameConfig{NameType: "first", Gender: "any", Case: "title"}
			},
			Build: newRandomName,
		},
		{
			Name:        "UUID_STRATEGY",
			Description: "UUIDs (v4 random, v5 deterministic, v7 time-ordered)",
			NewConfig:   func() ParamConfig { return &UUIDConfig{Version: 5, Hyphens: true} },
			Build:       newUUID,
		},
		{
			Name:        "DELETE_STRATEGY",
			Description: "Null out selected rows",
			NewConfig:   func() ParamConfig { return &DeleteConfig{} },
			Build:       newDelete,
		},
	}
}

// BuiltinAliases maps alternate names to canonical strategy names.
func BuiltinAliases() map[string]string {
	return map[string]string{
		"DATE_GENERATOR_STRATEGY": "RANDOM_DATE_RANGE_STRATEGY",
		"DATE_RANGE_STRATEGY":     "RANDOM_DATE_RANGE_STRATEGY",
		"NUMBER_RANGE_STRATEGY":   "RANDOM_NUMBER_RANGE_STRATEGY",
		"CHOICE_STRATEGY":         "DISTRIBUTED_CHOICE_STRATEGY",
		"NAME_STRATEGY":           "RANDOM_NAME_STRATEGY",
		"REGEX_STRATEGY":          "PATTERN_STRATEGY",
	}
}
