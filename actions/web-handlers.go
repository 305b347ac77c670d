package actions

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/relloyd/aorist/codegen"
	"github.com/relloyd/aorist/config"
	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/flow"
	"github.com/relloyd/aorist/logger"
)

// Defaults for POST /dag query parameters.
const (
	defaultDagMode     = constants.OutputModePython
	defaultDagDialects = "python,bash,presto,r"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseDag struct {
	Status   WebServerResponse `json:"status"`
	Message  string            `json:"message"`
	Universe string            `json:"universe,omitempty"`
	Mode     string            `json:"mode,omitempty"`
	Program  string            `json:"program,omitempty"`
	FlowId   string            `json:"flowId,omitempty"`
}

type ResponseFlowList struct {
	Status   WebServerResponse `json:"status"`
	FlowList []FlowListItem    `json:"flows"`
}

type FlowListItem struct {
	FlowId     string      `json:"flowId"`
	FlowName   string      `json:"flowName"`
	FlowStatus flow.Status `json:"flowStatus"`
}

type ResponseFlowStats struct {
	Status       WebServerResponse `json:"status"`
	Message      string            `json:"message"`
	StatsSummary interface{}       `json:"flowStats"`
}

type ResponseFlowStatus struct {
	Status     WebServerResponse `json:"status"`
	Message    string            `json:"message"`
	FlowStatus flow.RunStatus    `json:"flowStatus"`
}

type ResponseFlowStop struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	FlowId  string            `json:"flowId"`
}

type ResponseFlowLaunch struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	FlowId  string            `json:"flowId"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(log, w, http.StatusOK, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStop chan struct{}) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case chanStop <- struct{}{}:
			log.Info("Stop signal sent")
		default:
		}
		respond(log, w, http.StatusOK, ResponseSimple{ServerStatus: Okay})
	}
}

// GetHandlerDag compiles the manifests in the request body.
// Query parameters: targets (required), universe, mode, dialects, format (yaml|toml)
// and execute=true to run the plan as a flow instead of returning the program.
func GetHandlerDag(s *server) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mode := valueOrDefault(q.Get("mode"), defaultDagMode)
		dialects := valueOrDefault(q.Get("dialects"), defaultDagDialects)
		execute, _ := strconv.ParseBool(q.Get("execute"))
		fail := func(err error, msg string) {
			s.log.Error(err)
			respond(s.log, w, http.StatusBadRequest, ResponseDag{Status: Error, Message: fmt.Sprintf("%v: %v", msg, err)})
		}
		gen, err := codegen.New(mode)
		if err != nil {
			fail(err, "bad mode")
			return
		}
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			fail(err, "error reading request body")
			return
		}
		docs, err := config.ParseDocuments(b, valueOrDefault(q.Get("format"), config.FormatYAML), "request body")
		if err != nil {
			fail(err, "error parsing manifests")
			return
		}
		m, err := config.NewManifests(docs)
		if err != nil {
			fail(err, "invalid manifests")
			return
		}
		var lookup config.EndpointLookup
		if s.cfg.Endpoints != nil {
			lookup = s.cfg.Endpoints
		}
		u, err := m.Universe(q.Get("universe"), lookup, os.Getenv)
		if err != nil {
			fail(err, "invalid universe")
			return
		}
		plan, err := compilePlan(s.log, u, q.Get("targets"), dialects, s.recipes)
		if err != nil {
			fail(err, "error compiling universe")
			return
		}
		if execute {
			f, err := flow.FromPlan(plan)
			if err != nil {
				fail(err, "error building flow")
				return
			}
			id, err := flow.LaunchFlow(s.ctx, s.log, s.runs, f, flow.PlanLaunchOptions(plan, s.cfg.Workers), s.cfg.StatsDumpFrequencySeconds, false)
			if err != nil {
				fail(err, "error launching flow")
				return
			}
			respond(s.log, w, http.StatusOK, ResponseDag{Status: Okay, Message: "flow launched", Universe: u.Name, FlowId: id})
			return
		}
		program, err := gen.Generate(plan)
		if err != nil {
			fail(err, "error generating program")
			return
		}
		respond(s.log, w, http.StatusOK, ResponseDag{Status: Okay, Universe: u.Name, Mode: mode, Program: program})
	}
}

func GetHandlerFlowLaunch(s *server) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			logAndRespond(s.log, err, w, ResponseFlowLaunch{Status: Error, Message: fmt.Sprintf("error reading request body: %v", err)})
			return
		}
		f, err := flow.Parse(b)
		if err != nil {
			logAndRespond(s.log, err, w, ResponseFlowLaunch{Status: Error, Message: fmt.Sprintf("invalid flow definition supplied: %v", err)})
			return
		}
		id, err := flow.LaunchFlow(s.ctx, s.log, s.runs, f, flow.LaunchOptions{Workers: s.cfg.Workers}, s.cfg.StatsDumpFrequencySeconds, false)
		if err != nil {
			logAndRespond(s.log, err, w, ResponseFlowLaunch{Status: Error, Message: fmt.Sprintf("error launching flow: %v", err)})
			return
		}
		respond(s.log, w, http.StatusOK, ResponseFlowLaunch{Status: Okay, Message: "flow launched", FlowId: id})
	}
}

func GetHandlerFlowStop(log logger.Logger, runs *flow.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["flowId"]
		if _, ok := runs.Load(id); !ok {
			log.Info("HTTP request to stop flow ", id, " that doesn't exist.")
			respond(log, w, http.StatusBadRequest, ResponseFlowStop{Status: Error, Message: "flow does not exist", FlowId: id})
			return
		}
		if err := runs.Stop(id); err != nil {
			log.Info("HTTP request to stop flow ", id, ": ", err)
			respond(log, w, http.StatusOK, ResponseFlowStop{Status: Error, Message: "flow already ended", FlowId: id})
			return
		}
		log.Info("Stopping flow ", id)
		respond(log, w, http.StatusOK, ResponseFlowStop{Status: Okay, Message: "shutting down", FlowId: id})
	}
}

func GetHandlerFlowList(log logger.Logger, runs *flow.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		all := runs.List()
		items := make([]FlowListItem, 0, len(all))
		for _, ri := range all {
			items = append(items, FlowListItem{FlowId: ri.ID, FlowName: ri.FlowName, FlowStatus: ri.Status.Status})
		}
		respond(log, w, http.StatusOK, ResponseFlowList{Status: Okay, FlowList: items})
	}
}

func GetHandlerFlowStats(log logger.Logger, runs *flow.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["flowId"]
		ri, ok := runs.Load(id)
		if !ok {
			log.Info("HTTP request to fetch stats for flow ", id, " that doesn't exist.")
			respond(log, w, http.StatusBadRequest, ResponseFlowStats{Status: Error, Message: fmt.Sprintf("flow %v does not exist", id)})
			return
		}
		respond(log, w, http.StatusOK, ResponseFlowStats{Status: Okay, StatsSummary: ri.Stats.GetStats()})
	}
}

func GetHandlerFlowStatus(log logger.Logger, runs *flow.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["flowId"]
		ri, ok := runs.Load(id)
		if !ok {
			log.Info("HTTP request status of flow ", id, " that doesn't exist.")
			respond(log, w, http.StatusBadRequest, ResponseFlowStatus{Status: Error, Message: fmt.Sprintf("flow %v does not exist", id)})
			return
		}
		respond(log, w, http.StatusOK, ResponseFlowStatus{Status: Okay, FlowStatus: ri.Status})
	}
}

func valueOrDefault(v string, d string) string {
	if v == "" {
		return d
	}
	return v
}

// logAndRespond will log the error and write r to w with http.StatusBadRequest.
func logAndRespond(log logger.Logger, err error, w http.ResponseWriter, r interface{}) {
	log.Error(err)
	respond(log, w, http.StatusBadRequest, r)
}

// respond will marshal i to JSON and write it to w with the given status code.
func respond(log logger.Logger, w http.ResponseWriter, code int, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(j); err != nil {
		log.Error(err)
	}
}
