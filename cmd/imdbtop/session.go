package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/John-Robertt/imdbtop/internal/app"
	"github.com/John-Robertt/imdbtop/internal/catalog"
	"github.com/John-Robertt/imdbtop/internal/domain"
)

// session 是交互层：读一行、执行一个操作、打印结果。
// 所有“输入无效就再问一次”都是显式循环，不递归。
type session struct {
	in  *bufio.Scanner
	out io.Writer
}

func newSession(r io.Reader, w io.Writer) *session {
	return &session{in: bufio.NewScanner(r), out: w}
}

// ask 打印提示并读一行；输入结束时返回 io.EOF。
func (s *session) ask(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *session) chooseCategory() (domain.Category, error) {
	for {
		choice, err := s.ask("要抓取电影还是剧集？\n1. 电影\n2. 剧集\n> ")
		if err != nil {
			return "", err
		}
		switch choice {
		case "1":
			return domain.CategoryMovies, nil
		case "2":
			return domain.CategoryShows, nil
		default:
			fmt.Fprintln(s.out, "输入无效，请输入 1 或 2")
		}
	}
}

const manipulationMenu = `要执行什么操作？
0. 完成（显示并保存）
1. 按年份过滤
2. 按年份区间过滤
3. 按评分与评分人数排序（降序）
4. 随机推荐
5. 清除过滤
> `

// run 驱动主菜单，直到用户选择 0 并成功保存。
func (s *session) run(ctrl *app.Controller) error {
	for {
		choice, err := s.ask(manipulationMenu)
		if err != nil {
			return err
		}
		switch choice {
		case "0":
			s.show(ctrl.Category(), ctrl.View())
			return s.save(ctrl)
		case "1":
			year, err := s.ask("输入年份：")
			if err != nil {
				return err
			}
			s.applyFilter(ctrl, ctrl.FilterByYear(year))
		case "2":
			start, err := s.ask("输入起始年份：")
			if err != nil {
				return err
			}
			end, err := s.ask("输入结束年份：")
			if err != nil {
				return err
			}
			s.applyFilter(ctrl, ctrl.FilterByPeriod(start, end))
		case "3":
			ctrl.SortByRating()
			s.show(ctrl.Category(), ctrl.View())
		case "4":
			if err := s.recommend(ctrl); err != nil {
				return err
			}
		case "5":
			ctrl.ClearFilters()
			fmt.Fprintln(s.out, "已清除过滤")
		default:
			fmt.Fprintln(s.out, "输入无效，请输入 0-5")
		}
	}
}

func (s *session) applyFilter(ctrl *app.Controller, err error) {
	if err != nil {
		if catalog.IsInvalidYear(err) {
			fmt.Fprintf(s.out, "%v，视图未改变\n", err)
			return
		}
		fmt.Fprintf(s.out, "过滤失败：%v\n", err)
		return
	}
	s.show(ctrl.Category(), ctrl.View())
}

func (s *session) recommend(ctrl *app.Controller) error {
	for {
		r, ok := ctrl.Recommend()
		if !ok {
			fmt.Fprintln(s.out, "没有更多推荐了。")
			return nil
		}
		s.show(ctrl.Category(), []domain.Record{r})

	sub:
		for {
			choice, err := s.ask("0. 返回\n1. 我看过了，换一个\n> ")
			if err != nil {
				return err
			}
			switch choice {
			case "0":
				return nil
			case "1":
				if err := ctrl.Reject(r.Title); err != nil {
					return err
				}
				break sub
			default:
				fmt.Fprintln(s.out, "输入无效，请输入 0 或 1")
			}
		}
	}
}

func (s *session) save(ctrl *app.Controller) error {
	for {
		name, err := s.ask("输入导出文件名：")
		if err != nil {
			return err
		}
		path, err := ctrl.Persist(app.WhichCurrent, name)
		if errors.Is(err, app.ErrEmptyName) {
			fmt.Fprintln(s.out, err)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "已保存：%s\n", path)
		return nil
	}
}

// show 把记录打印为表格；Rated by 列使用千分位格式。
func (s *session) show(cat domain.Category, recs []domain.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(s.out, "（当前视图为空）")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Index\t%s\tYear\tRating\tRated by\n", cat.Noun())
	for i, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, r.Title, r.Year, r.Rating, r.DisplayRatedBy())
	}
	_ = tw.Flush()
}
