// Package kpi derives per-source acquisition metrics and the post-acquisition
// event category mix from the rollup tables. Rates and shares are rounded to
// three decimals.
package kpi
