package tourvisor

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"time"
)

// SearchRequest carries the parameters of one tour search. It is derived from
// a completed dialogue session and is not stored anywhere.
type SearchRequest struct {
	Departure  string
	Country    string
	DateFrom   time.Time
	DateTo     time.Time
	NightsFrom int
	NightsTo   int
	Adults     int
	Children   int
}

// Values renders the request as backend query parameters.
// Dates use the DD.MM.YYYY format the backend expects.
func (r SearchRequest) Values() url.Values {
	v := url.Values{}
	v.Set("departure", r.Departure)
	v.Set("country", r.Country)
	v.Set("datefrom", r.DateFrom.Format("02.01.2006"))
	v.Set("dateto", r.DateTo.Format("02.01.2006"))
	v.Set("nightsfrom", fmt.Sprint(r.NightsFrom))
	v.Set("nightsto", fmt.Sprint(r.NightsTo))
	v.Set("adults", fmt.Sprint(r.Adults))
	v.Set("child", fmt.Sprint(r.Children))
	v.Set("format", "xml")
	return v
}

// Status is the backend's view of an in-flight search job.
type Status struct {
	State       string `xml:"state"`
	HotelsFound int    `xml:"hotelsfound"`
	ToursFound  int    `xml:"toursfound"`
	MinPrice    string `xml:"minprice"`
}

// Finished reports whether the backend considers the search complete.
func (s Status) Finished() bool {
	return s.State == "finished"
}

// Tour is one bookable option inside a hotel record.
type Tour struct {
	FlyDate string `xml:"flydate"`
	Nights  int    `xml:"nights"`
	Price   string `xml:"price"`
	Meal    string `xml:"mealrussian"`
}

// Hotel is one hotel record of a search result, with its nested tour options.
type Hotel struct {
	Name         string `xml:"hotelname"`
	Stars        string `xml:"hotelstars"`
	Rating       string `xml:"hotelrating"`
	Country      string `xml:"countryname"`
	Region       string `xml:"regionname"`
	Price        string `xml:"price"`
	Description  string `xml:"hoteldescription"`
	FullDescLink string `xml:"fulldesclink"`
	Tours        []Tour `xml:"tours>tour"`
}

// submitEnvelope tolerates both the <result> root of a successful submit and
// the error envelope carrying <errormessage>.
type submitEnvelope struct {
	XMLName      xml.Name
	RequestID    string `xml:"requestid"`
	ErrorMessage string `xml:"errormessage"`
}

type statusEnvelope struct {
	XMLName xml.Name `xml:"data"`
	Status  Status   `xml:"status"`
}

type resultEnvelope struct {
	XMLName xml.Name `xml:"data"`
	Result  struct {
		Hotels []Hotel `xml:"hotel"`
	} `xml:"result"`
}
