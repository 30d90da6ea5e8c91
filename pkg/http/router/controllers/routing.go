package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/routegraph/pkg/datastructure"
	helper "github.com/lintang-b-s/routegraph/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type routingAPI struct {
	routingService RoutingService
	controlService ControlService
	log            *zap.Logger
}

func New(routingService RoutingService, controlService ControlService,
	log *zap.Logger) *routingAPI {
	return &routingAPI{
		routingService: routingService,
		controlService: controlService,
		log:            log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/route", api.route)
	group.POST("/edges/adjust", api.adjustEdges)
	group.GET("/status", api.status)
}

// route answers both request forms: start_id/goal_id for graph node ids,
// start_lat/start_lon/goal_lat/goal_lon for poses snapped to the graph.
func (api *routingAPI) route(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		route *datastructure.Route
		path  string
		err   error
	)

	query := r.URL.Query()

	blockedIds, err := parseIndexList(query.Get("blocked_ids"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("blocked_ids must be a comma separated list of edge or node ids"))
		return
	}

	if query.Has("start_id") || query.Has("goal_id") {
		startId, err := datastructure.ParseIndex(query.Get("start_id"))
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("start_id is required and must be a valid node id"))
			return
		}
		goalId, err := datastructure.ParseIndex(query.Get("goal_id"))
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("goal_id is required and must be a valid node id"))
			return
		}

		route, path, err = api.routingService.RouteByID(startId, goalId, blockedIds)
		if err != nil {
			api.getStatusCode(w, r, err)
			return
		}
	} else {
		var request routeByPoseRequest

		request.StartLat, err = strconv.ParseFloat(query.Get("start_lat"), 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("start_lat is required and must be a valid float"))
			return
		}
		request.StartLon, err = strconv.ParseFloat(query.Get("start_lon"), 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("start_lon is required and must be a valid float"))
			return
		}
		request.GoalLat, err = strconv.ParseFloat(query.Get("goal_lat"), 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("goal_lat is required and must be a valid float"))
			return
		}
		request.GoalLon, err = strconv.ParseFloat(query.Get("goal_lon"), 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("goal_lon is required and must be a valid float"))
			return
		}

		validate := validator.New()
		if err := validate.Struct(request); err != nil {
			english := en.New()
			uni := ut.New(english, english)
			trans, _ := uni.GetTranslator("en")
			_ = enTranslations.RegisterDefaultTranslations(validate, trans)
			vv := translateError(err, trans)
			vvString := []string{}
			for _, v := range vv {
				vvString = append(vvString, v.Error())
			}
			api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
			return
		}

		route, path, err = api.routingService.RouteByPose(request.StartLat, request.StartLon,
			request.GoalLat, request.GoalLon, blockedIds)
		if err != nil {
			api.getStatusCode(w, r, err)
			return
		}
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewRouteResponse(route, path)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) adjustEdges(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request adjustEdgesRequest
		err     error
	)

	err = json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	if err := api.controlService.AdjustEdges(request.ClosedEdges, request.OpenedEdges,
		request.ToEdgePenalties()); err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": adjustEdgesResponse{Success: true}}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) status(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	engineStatus := api.controlService.Status()

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewStatusResponse(engineStatus)},
		headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func parseIndexList(s string) ([]datastructure.Index, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]datastructure.Index, 0, len(parts))
	for _, part := range parts {
		id, err := datastructure.ParseIndex(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
